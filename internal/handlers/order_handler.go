package handlers

import (
	"net/http"
	"strings"

	"order_service/internal/repository"
	"order_service/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrders places one order per seller group in the request.
// Partial success is a success; failed sub-orders come back in
// data.failures.
func (h *OrderHandler) CreateOrders(c *gin.Context) {
	var req services.CreateOrdersInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format")
		return
	}

	result, err := h.orderService.CreateOrders(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Orders created successfully"
	if len(result.Failures) > 0 {
		message = "Some orders could not be created"
	}
	respondSuccess(c, http.StatusCreated, message, result)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format")
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Order updated successfully", order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Order cancelled successfully", order)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}

	orders, err := h.orderService.GetOrders(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Orders fetched successfully", orders)
}

func (h *OrderHandler) GetOrdersByIDs(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		respondBadRequest(c, "ids is required")
		return
	}

	orders, err := h.orderService.GetOrdersByIDs(req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Orders fetched successfully", orders)
}

func (h *OrderHandler) GetOrdersByUser(c *gin.Context) {
	userID := parseUintQuery(c, "user_id")
	if userID == 0 {
		respondBadRequest(c, "user_id is required")
		return
	}

	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}
	filter.UserID = userID

	orders, err := h.orderService.GetOrders(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Orders fetched successfully", orders)
}

func (h *OrderHandler) GetOrdersBySeller(c *gin.Context) {
	sellerID, ok := parseIDParam(c, "seller_id")
	if !ok {
		return
	}

	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}
	filter.SellerID = sellerID

	orders, err := h.orderService.GetOrders(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Orders fetched successfully", orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Order fetched successfully", order)
}

func (h *OrderHandler) GetOrderItems(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	items, err := h.orderService.GetOrderItems(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Order details fetched successfully", items)
}

// GetOrdersWithDetails serves the seller dashboard: filtered orders
// enriched with shipment and buyer info plus grouped status counts.
func (h *OrderHandler) GetOrdersWithDetails(c *gin.Context) {
	sellerID := parseUintQuery(c, "seller_id")
	if sellerID == 0 {
		respondBadRequest(c, "seller_id is required")
		return
	}

	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}
	filter.SellerID = sellerID

	result, err := h.orderService.GetOrdersWithDetails(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Orders fetched successfully", result)
}

// orderFilterFromQuery reads the shared listing filters. order_status
// accepts a comma separated list; routes with a seller in the path
// override SellerID after the fact.
func orderFilterFromQuery(c *gin.Context) (repository.OrderFilter, bool) {
	filter := repository.OrderFilter{
		SellerID:      parseUintQuery(c, "seller_id"),
		PaymentStatus: c.Query("payment_status"),
	}
	if statuses := c.Query("order_status"); statuses != "" {
		filter.OrderStatuses = strings.Split(statuses, ",")
	}

	start, end, ok := parseDateRange(c)
	if !ok {
		return filter, false
	}
	filter.StartDate = start
	filter.EndDate = end
	return filter, true
}
