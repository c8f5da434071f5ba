package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"order_service/internal/models"
	"order_service/internal/repository"
	"order_service/internal/services"
	"order_service/pkg/storage"

	"github.com/gin-gonic/gin"
)

const (
	maxEvidenceFiles    = 10
	maxEvidenceFileSize = 10 << 20
)

type ReturnHandler struct {
	returnService services.ReturnService
}

func NewReturnHandler(returnService services.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// CreateReturnRequest reads a multipart form: text fields for the
// claim, an items JSON field for the claimed lines and up to ten
// image_related evidence files.
func (h *ReturnHandler) CreateReturnRequest(c *gin.Context) {
	orderID, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondBadRequest(c, "Invalid multipart form")
		return
	}

	input := services.CreateReturnRequestInput{
		Reason:          c.PostForm("reason"),
		CustomerMessage: c.PostForm("customer_message"),
	}
	if addressID, err := strconv.ParseUint(c.PostForm("customer_shipping_address_id"), 10, 32); err == nil {
		input.CustomerShippingAddressID = uint(addressID)
	}
	if itemsJSON := c.PostForm("items"); itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &input.Items); err != nil {
			respondBadRequest(c, "items must be a JSON array")
			return
		}
	}

	files := form.File["image_related"]
	if len(files) > maxEvidenceFiles {
		respondBadRequest(c, "At most 10 evidence images are allowed")
		return
	}
	for _, header := range files {
		if header.Size > maxEvidenceFileSize {
			respondBadRequest(c, "Evidence images must not exceed 10MB")
			return
		}
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			respondBadRequest(c, "Evidence files must be images")
			return
		}
		file, err := header.Open()
		if err != nil {
			respondBadRequest(c, "Failed to read evidence image")
			return
		}
		defer file.Close()
		input.Evidence = append(input.Evidence, storage.File{
			Name:   header.Filename,
			Reader: file,
		})
	}

	request, err := h.returnService.CreateReturnRequest(c.Request.Context(), orderID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Return request created successfully", request)
}

// RespondReturnRequest accepts or rejects a request. The responder's
// role comes from the gateway via the X-User-Role header.
func (h *ReturnHandler) RespondReturnRequest(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.RespondReturnRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format")
		return
	}
	req.ResponderRole = c.GetHeader("X-User-Role")

	result, err := h.returnService.RespondReturnRequest(c.Request.Context(), requestID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Return request responded successfully", result)
}

func (h *ReturnHandler) DeleteReturnRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.returnService.DeleteReturnRequest(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Return request deleted successfully", nil)
}

func (h *ReturnHandler) GetReturnRequests(c *gin.Context) {
	filter := repository.ReturnRequestFilter{
		SellerID: parseUintQuery(c, "seller_id"),
		UserID:   parseUintQuery(c, "user_id"),
		Status:   c.Query("status"),
	}

	requests, err := h.returnService.GetReturnRequests(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Return requests fetched successfully", requests)
}

func (h *ReturnHandler) GetReturnRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.returnService.GetReturnRequestByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Return request fetched successfully", request)
}

// GetReturnRequestDetails loads a request with its claimed item lines,
// addressed either by request_id (any status, rejected included) or by
// order_id (the order's active request).
func (h *ReturnHandler) GetReturnRequestDetails(c *gin.Context) {
	if requestID := parseUintQuery(c, "request_id"); requestID != 0 {
		details, err := h.returnService.GetReturnRequestDetailsByID(requestID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, "Return request fetched successfully", details)
		return
	}

	orderID := parseUintQuery(c, "order_id")
	if orderID == 0 {
		respondBadRequest(c, "order_id or request_id is required")
		return
	}

	details, err := h.returnService.GetReturnRequestDetails(orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Return request fetched successfully", details)
}

func (h *ReturnHandler) UpdateReturnedOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateReturnedOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format")
		return
	}

	returnedOrder, err := h.returnService.UpdateReturnedOrder(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Returned order updated successfully", returnedOrder)
}

func (h *ReturnHandler) GetReturnedOrders(c *gin.Context) {
	filter, ok := returnedOrderFilterFromQuery(c)
	if !ok {
		return
	}

	returnedOrders, err := h.returnService.GetReturnedOrders(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Returned orders fetched successfully", returnedOrders)
}

func (h *ReturnHandler) GetReturnedOrdersWithDetails(c *gin.Context) {
	filter, ok := returnedOrderFilterFromQuery(c)
	if !ok {
		return
	}

	details, err := h.returnService.GetReturnedOrdersWithDetails(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Returned orders fetched successfully", details)
}

func (h *ReturnHandler) GetReturnedOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	returnedOrder, err := h.returnService.GetReturnedOrderByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Returned order fetched successfully", returnedOrder)
}

func (h *ReturnHandler) GetReturnedOrderDetails(c *gin.Context) {
	id := parseUintQuery(c, "id")
	if id == 0 {
		respondBadRequest(c, "id is required")
		return
	}

	details, err := h.returnService.GetReturnedOrderDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Returned order fetched successfully", details)
}

func returnedOrderFilterFromQuery(c *gin.Context) (repository.ReturnedOrderFilter, bool) {
	filter := repository.ReturnedOrderFilter{
		SellerID:            parseUintQuery(c, "seller_id"),
		UserID:              parseUintQuery(c, "user_id"),
		OrderStatus:         c.Query("order_status"),
		PaymentRefundStatus: c.Query("payment_refund_status"),
	}
	if filter.OrderStatus != "" && !models.ValidReturnedOrderStatus(filter.OrderStatus) {
		respondBadRequest(c, "Invalid order_status")
		return filter, false
	}
	if filter.PaymentRefundStatus != "" && !models.ValidRefundStatus(filter.PaymentRefundStatus) {
		respondBadRequest(c, "Invalid payment_refund_status")
		return filter, false
	}

	start, end, ok := parseDateRange(c)
	if !ok {
		return filter, false
	}
	filter.StartDate = start
	filter.EndDate = end
	return filter, true
}
