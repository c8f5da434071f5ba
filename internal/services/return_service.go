package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"order_service/internal/models"
	"order_service/internal/repository"
	"order_service/pkg/platform"
	"order_service/pkg/storage"
)

// ReturnItemInput claims one order item line by its id. Claims address
// item lines rather than products, so an order carrying the same
// product on two lines can return them independently.
type ReturnItemInput struct {
	OrderItemID uint `json:"id"`
	Quantity    int  `json:"product_quantity"`
}

type CreateReturnRequestInput struct {
	Reason                    string
	CustomerMessage           string
	CustomerShippingAddressID uint
	Items                     []ReturnItemInput
	Evidence                  []storage.File
}

type RespondReturnRequestInput struct {
	Status          string `json:"status"`
	ResponseMessage string `json:"response_message"`
	ResponderRole   string `json:"-"`
}

// RespondResult carries the responded request and, on acceptance, the
// returned order it spawned.
type RespondResult struct {
	Request       *models.OrderReturnRequest `json:"request"`
	ReturnedOrder *models.ReturnedOrder      `json:"returned_order,omitempty"`
}

type UpdateReturnedOrderInput struct {
	OrderStatus         string `json:"order_status"`
	PaymentRefundStatus string `json:"payment_refund_status"`
}

type ReturnRequestDetails struct {
	Request *models.OrderReturnRequest  `json:"request"`
	Items   []*models.ReturnedOrderItem `json:"items"`
}

// ReturnedOrderDetails enriches a returned order with its item lines
// and, when requested, its return shipment and buyer profile.
type ReturnedOrderDetails struct {
	models.ReturnedOrder
	Items    []*models.ReturnedOrderItem `json:"items"`
	Shipment json.RawMessage             `json:"shipment,omitempty"`
	User     json.RawMessage             `json:"user,omitempty"`
}

type ReturnService interface {
	CreateReturnRequest(ctx context.Context, orderID uint, input CreateReturnRequestInput) (*models.OrderReturnRequest, error)
	RespondReturnRequest(ctx context.Context, requestID uint, input RespondReturnRequestInput) (*RespondResult, error)
	DeleteReturnRequest(ctx context.Context, id uint) error
	UpdateReturnedOrder(ctx context.Context, id uint, input UpdateReturnedOrderInput) (*models.ReturnedOrder, error)
	GetReturnRequests(filter repository.ReturnRequestFilter) ([]models.OrderReturnRequest, error)
	GetReturnRequestByID(id uint) (*models.OrderReturnRequest, error)
	GetReturnRequestDetails(orderID uint) (*ReturnRequestDetails, error)
	GetReturnRequestDetailsByID(id uint) (*ReturnRequestDetails, error)
	GetReturnedOrders(filter repository.ReturnedOrderFilter) ([]models.ReturnedOrder, error)
	GetReturnedOrdersWithDetails(ctx context.Context, filter repository.ReturnedOrderFilter) ([]ReturnedOrderDetails, error)
	GetReturnedOrderByID(id uint) (*models.ReturnedOrder, error)
	GetReturnedOrderDetails(ctx context.Context, id uint) (*ReturnedOrderDetails, error)
}

type returnService struct {
	orderRepo         repository.OrderRepository
	orderItemRepo     repository.OrderItemRepository
	requestRepo       repository.ReturnRequestRepository
	returnedOrderRepo repository.ReturnedOrderRepository
	returnedItemRepo  repository.ReturnedOrderItemRepository

	product      ProductGateway
	shipment     ShipmentGateway
	user         UserGateway
	notification NotificationGateway
	files        FileStorage

	dispatch    Dispatcher
	fallbackFee float64
}

func NewReturnService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	requestRepo repository.ReturnRequestRepository,
	returnedOrderRepo repository.ReturnedOrderRepository,
	returnedItemRepo repository.ReturnedOrderItemRepository,
	product ProductGateway,
	shipment ShipmentGateway,
	user UserGateway,
	notification NotificationGateway,
	files FileStorage,
	dispatch Dispatcher,
	fallbackFee float64,
) ReturnService {
	return &returnService{
		orderRepo:         orderRepo,
		orderItemRepo:     orderItemRepo,
		requestRepo:       requestRepo,
		returnedOrderRepo: returnedOrderRepo,
		returnedItemRepo:  returnedItemRepo,
		product:           product,
		shipment:          shipment,
		user:              user,
		notification:      notification,
		files:             files,
		dispatch:          dispatch,
		fallbackFee:       fallbackFee,
	}
}

// CreateReturnRequest opens a return claim against a completed order.
// Item claims are validated against the order's snapshots before
// anything is written; evidence images are uploaded before the local
// transaction and deleted again when it fails.
func (s *returnService) CreateReturnRequest(ctx context.Context, orderID uint, input CreateReturnRequestInput) (*models.OrderReturnRequest, error) {
	var errs []string
	if input.Reason == "" {
		errs = append(errs, "reason is required")
	}
	if input.CustomerShippingAddressID == 0 {
		errs = append(errs, "customer_shipping_address_id is required")
	}
	if len(input.Items) == 0 {
		errs = append(errs, "items is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, notFoundOr(err, "Order does not exist")
	}
	if !order.IsCompleted {
		return nil, &ConflictError{Message: "Only completed orders can be returned"}
	}

	active, err := s.requestRepo.GetActiveByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.Status == models.ReturnAccepted {
			return nil, &ConflictError{Message: "A return request for this order has already been accepted"}
		}
		return nil, &ConflictError{Message: "A return request for this order is already awaiting response"}
	}

	orderItems, err := s.orderItemRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	byItemID := make(map[uint]*models.OrderItem, len(orderItems))
	for _, item := range orderItems {
		byItemID[item.ID] = item
	}

	items := make([]*models.ReturnedOrderItem, 0, len(input.Items))
	for _, claim := range input.Items {
		snapshot, ok := byItemID[claim.OrderItemID]
		if !ok {
			errs = append(errs, fmt.Sprintf("order item %d is not part of order %d", claim.OrderItemID, orderID))
			continue
		}
		if claim.Quantity <= 0 || claim.Quantity > snapshot.ProductQuantity {
			errs = append(errs, fmt.Sprintf("invalid quantity %d for order item %d", claim.Quantity, claim.OrderItemID))
			continue
		}
		items = append(items, &models.ReturnedOrderItem{
			ProductID:       snapshot.ProductID,
			ProductName:     snapshot.ProductName,
			ProductPrice:    snapshot.ProductPrice,
			ProductQuantity: claim.Quantity,
			ProductURLImage: snapshot.ProductURLImage,
		})
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	uploadCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()
	uploaded, err := s.files.UploadAll(uploadCtx, input.Evidence)
	if err != nil {
		s.deleteEvidence(uploaded)
		return nil, &UpstreamError{Op: "upload evidence", Err: err}
	}

	urls := make([]string, 0, len(uploaded))
	for _, result := range uploaded {
		urls = append(urls, result.URL)
	}

	request := &models.OrderReturnRequest{
		OrderID:                   orderID,
		SellerID:                  order.SellerID,
		UserID:                    order.UserID,
		Reason:                    input.Reason,
		CustomerMessage:           input.CustomerMessage,
		URLImagesRelated:          urls,
		RequestAt:                 time.Now(),
		Status:                    models.ReturnRequested,
		CustomerShippingAddressID: input.CustomerShippingAddressID,
	}
	request.DeriveShippingFeePayer()

	if err := s.requestRepo.CreateWithItems(request, items); err != nil {
		s.deleteEvidence(uploaded)
		return nil, err
	}

	s.notify(platform.Notification{
		TargetType: platform.TargetSeller,
		StoreID:    order.SellerID,
		Title:      "New return request",
		Body:       fmt.Sprintf("Order #%d has a new return request awaiting your response.", orderID),
	})
	s.notify(platform.Notification{
		TargetType: platform.TargetCustomer,
		TargetID:   order.UserID,
		Title:      "Return request submitted",
		Body:       fmt.Sprintf("Your return request for order #%d has been submitted.", orderID),
	})

	return request, nil
}

func (s *returnService) deleteEvidence(uploaded []storage.UploadResult) {
	for _, result := range uploaded {
		publicID := result.PublicID
		s.dispatch("delete evidence image", func(ctx context.Context) error {
			return s.files.Delete(ctx, publicID)
		})
	}
}

// RespondReturnRequest accepts or rejects a pending request. A rejected
// request may still be accepted later; an accepted one is final.
// Acceptance computes the refund, quotes the return shipping fee and
// creates the returned order in one transaction.
func (s *returnService) RespondReturnRequest(ctx context.Context, requestID uint, input RespondReturnRequestInput) (*RespondResult, error) {
	if input.Status != models.ReturnAccepted && input.Status != models.ReturnRejected {
		return nil, NewValidationError("status must be accepted or rejected")
	}

	request, err := s.requestRepo.GetAwaitingResponse(requestID)
	if err != nil {
		return nil, notFoundOr(err, "Return request does not exist or has already been accepted")
	}

	now := time.Now()
	request.Status = input.Status
	request.ResponseMessage = input.ResponseMessage
	request.ResponseAt = &now
	request.DeriveShippingFeePayer()

	if input.Status == models.ReturnRejected {
		if err := s.requestRepo.Update(request); err != nil {
			return nil, err
		}
		s.notifyRejection(request, input.ResponderRole)
		return &RespondResult{Request: request}, nil
	}

	order, err := s.orderRepo.GetByID(request.OrderID)
	if err != nil {
		return nil, notFoundOr(err, "Order does not exist")
	}
	items, err := s.returnedItemRepo.GetByRequestID(request.ID)
	if err != nil {
		return nil, err
	}

	totalDiscountItems := order.DiscountAmountItems + order.DiscountAmountItemsPlatformAllocated
	refund := AllocateOrderRefund(order.OriginalItemsTotal, totalDiscountItems, items)

	totalQuantity := 0
	for _, item := range items {
		totalQuantity += item.ProductQuantity
	}

	quoteCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()
	// A quote that fails or comes back empty falls back to the fixed
	// fee; acceptance is never blocked on the shipment service.
	fee, err := s.shipment.QuoteReturnShippingFee(quoteCtx, request.CustomerShippingAddressID, request.SellerID)
	if err != nil || fee <= 0 {
		fee = s.fallbackFee
	}

	returnedOrder := &models.ReturnedOrder{
		OrderReturnRequestID:    request.ID,
		OrderID:                 request.OrderID,
		SellerID:                request.SellerID,
		SellerName:              order.SellerName,
		UserID:                  request.UserID,
		TotalQuantity:           totalQuantity,
		ReturnShippingFee:       fee,
		ReturnShippingFeePaidBy: request.ReturnShippingFeePaidBy,
		RefundAmount:            refund,
		OrderStatus:             models.ReturnedOrderProcessing,
		PaymentRefundStatus:     models.RefundPending,
	}

	if err := s.returnedOrderRepo.CreateFromRequest(request, returnedOrder, items); err != nil {
		return nil, err
	}

	s.dispatch("create return shipment", func(ctx context.Context) error {
		return s.shipment.CreateShippingOrder(ctx, platform.ShippingOrder{
			OrderID:         request.OrderID,
			ReturnedOrderID: &returnedOrder.ID,
			UserID:          request.UserID,
			SellerID:        request.SellerID,
		})
	})
	s.notify(platform.Notification{
		TargetType: platform.TargetCustomer,
		TargetID:   request.UserID,
		Title:      "Return request accepted",
		Body:       fmt.Sprintf("Your return request for order #%d has been accepted. A shipper will pick up the items.", request.OrderID),
	})

	return &RespondResult{Request: request, ReturnedOrder: returnedOrder}, nil
}

// notifyRejection routes the rejection notice. A platform responder
// closes the case toward both sides; a seller rejection goes to the
// platform for review.
func (s *returnService) notifyRejection(request *models.OrderReturnRequest, responderRole string) {
	switch responderRole {
	case "admin_system", "staff_system":
		s.notify(platform.Notification{
			TargetType: platform.TargetSeller,
			StoreID:    request.SellerID,
			Title:      "Return rejection approved",
			Body:       fmt.Sprintf("Your rejection of the return request for order #%d has been approved.", request.OrderID),
		})
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   request.UserID,
			Title:      "Return request rejected",
			Body:       fmt.Sprintf("Your return request for order #%d has been rejected.", request.OrderID),
		})
	default:
		s.notify(platform.Notification{
			TargetType: platform.TargetPlatform,
			Title:      "Return rejection awaiting review",
			Body:       fmt.Sprintf("The seller rejected the return request for order #%d. Please review the case.", request.OrderID),
		})
	}
}

// DeleteReturnRequest withdraws a claim that has not been accepted,
// removing its item lines and evidence images.
func (s *returnService) DeleteReturnRequest(ctx context.Context, id uint) error {
	request, err := s.requestRepo.GetByID(id)
	if err != nil {
		return notFoundOr(err, "Return request does not exist")
	}
	if request.Status == models.ReturnAccepted {
		return &ConflictError{Message: "Return request already accepted, cannot delete"}
	}

	if err := s.requestRepo.Delete(request); err != nil {
		return err
	}

	for _, url := range request.URLImagesRelated {
		publicID := publicIDFromURL(url)
		if publicID == "" {
			continue
		}
		s.dispatch("delete evidence image", func(ctx context.Context) error {
			return s.files.Delete(ctx, publicID)
		})
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// publicIDFromURL recovers a Cloudinary public ID from a delivery URL:
// everything after the version segment, without the file extension.
func publicIDFromURL(url string) string {
	_, after, found := strings.Cut(url, "/upload/")
	if !found {
		return ""
	}
	parts := strings.SplitN(after, "/", 2)
	if len(parts) == 2 && versionSegment.MatchString(parts[0]) {
		after = parts[1]
	}
	ext := path.Ext(after)
	return strings.TrimSuffix(after, ext)
}

// UpdateReturnedOrder applies a partial status update under a row lock.
// Completion writes the refund back to the original order and restocks
// the returned quantities.
func (s *returnService) UpdateReturnedOrder(ctx context.Context, id uint, input UpdateReturnedOrderInput) (*models.ReturnedOrder, error) {
	var errs []string
	if input.OrderStatus != "" && !models.ValidReturnedOrderStatus(input.OrderStatus) {
		errs = append(errs, "order_status must be processing, ready_to_ship, shipping, returned or failed")
	}
	if input.PaymentRefundStatus != "" && !models.ValidRefundStatus(input.PaymentRefundStatus) {
		errs = append(errs, "payment_refund_status must be pending, completed or failed")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	returnedOrder, err := s.returnedOrderRepo.UpdateWithLock(id, func(returnedOrder *models.ReturnedOrder) error {
		if returnedOrder.IsCompleted {
			return &ConflictError{Message: "Returned order already completed, cannot update"}
		}
		if input.OrderStatus != "" {
			returnedOrder.OrderStatus = input.OrderStatus
		}
		if input.PaymentRefundStatus != "" {
			returnedOrder.PaymentRefundStatus = input.PaymentRefundStatus
		}
		returnedOrder.RefreshCompleted()
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "Returned order does not exist")
	}

	if returnedOrder.IsCompleted {
		if err := s.orderRepo.UpdateStatuses(returnedOrder.OrderID, models.OrderRefunded, models.PaymentRefunded); err != nil {
			return nil, err
		}
		s.dispatch("restock returned products", func(ctx context.Context) error {
			items, err := s.returnedItemRepo.GetByReturnedOrderID(returnedOrder.ID)
			if err != nil {
				return err
			}
			products := make([]platform.PurchasedProduct, 0, len(items))
			for _, item := range items {
				products = append(products, platform.PurchasedProduct{
					ProductID:  item.ProductID,
					Quantity:   item.ProductQuantity,
					TotalPrice: item.ProductPrice * float64(item.ProductQuantity),
				})
			}
			return s.product.UpdateReturnedQuantities(ctx, returnedOrder.OrderID, products)
		})
	}

	if input.OrderStatus != "" {
		s.notifyReturnedOrderStatus(returnedOrder, input.OrderStatus)
	}
	switch input.PaymentRefundStatus {
	case models.RefundCompleted:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   returnedOrder.UserID,
			Title:      "Refund completed",
			Body:       fmt.Sprintf("The refund of %.0f for order #%d has been transferred.", returnedOrder.RefundAmount, returnedOrder.OrderID),
		})
	case models.RefundFailed:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   returnedOrder.UserID,
			Title:      "Refund failed",
			Body:       fmt.Sprintf("The refund for order #%d has failed. Please contact support.", returnedOrder.OrderID),
		})
	}

	return returnedOrder, nil
}

func (s *returnService) notifyReturnedOrderStatus(returnedOrder *models.ReturnedOrder, orderStatus string) {
	switch orderStatus {
	case models.ReturnedOrderReadyToShip:
		s.notify(platform.Notification{
			TargetType: platform.TargetSeller,
			StoreID:    returnedOrder.SellerID,
			Title:      "Return picked up",
			Body:       fmt.Sprintf("The returned items of order #%d have been picked up.", returnedOrder.OrderID),
		})
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   returnedOrder.UserID,
			Title:      "Return picked up",
			Body:       fmt.Sprintf("The items you returned for order #%d have been picked up.", returnedOrder.OrderID),
		})
	case models.ReturnedOrderShipping:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   returnedOrder.UserID,
			Title:      "Return on the way",
			Body:       fmt.Sprintf("The items you returned for order #%d are on the way back to the seller.", returnedOrder.OrderID),
		})
	case models.ReturnedOrderReturned:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   returnedOrder.UserID,
			Title:      "Return delivered",
			Body:       fmt.Sprintf("The items you returned for order #%d have reached the seller.", returnedOrder.OrderID),
		})
		s.notify(platform.Notification{
			TargetType: platform.TargetSeller,
			StoreID:    returnedOrder.SellerID,
			Title:      "Return delivered",
			Body:       fmt.Sprintf("The returned items of order #%d have been delivered to you.", returnedOrder.OrderID),
		})
	case models.ReturnedOrderFailed:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   returnedOrder.UserID,
			Title:      "Return failed",
			Body:       fmt.Sprintf("The return of order #%d has failed. Please contact support.", returnedOrder.OrderID),
		})
		s.notify(platform.Notification{
			TargetType: platform.TargetSeller,
			StoreID:    returnedOrder.SellerID,
			Title:      "Return failed",
			Body:       fmt.Sprintf("The return of order #%d has failed.", returnedOrder.OrderID),
		})
	}
}

func (s *returnService) GetReturnRequests(filter repository.ReturnRequestFilter) ([]models.OrderReturnRequest, error) {
	return s.requestRepo.List(filter)
}

func (s *returnService) GetReturnRequestByID(id uint) (*models.OrderReturnRequest, error) {
	request, err := s.requestRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Return request does not exist")
	}
	return request, nil
}

// GetReturnRequestDetails loads the order's active request together
// with its claimed item lines.
func (s *returnService) GetReturnRequestDetails(orderID uint) (*ReturnRequestDetails, error) {
	request, err := s.requestRepo.GetActiveByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, &NotFoundError{Message: "No active return request for this order"}
	}
	items, err := s.returnedItemRepo.GetByRequestID(request.ID)
	if err != nil {
		return nil, err
	}
	return &ReturnRequestDetails{Request: request, Items: items}, nil
}

// GetReturnRequestDetailsByID loads a request with its claimed item
// lines regardless of its status, rejected requests included.
func (s *returnService) GetReturnRequestDetailsByID(id uint) (*ReturnRequestDetails, error) {
	request, err := s.requestRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Return request does not exist")
	}
	items, err := s.returnedItemRepo.GetByRequestID(request.ID)
	if err != nil {
		return nil, err
	}
	return &ReturnRequestDetails{Request: request, Items: items}, nil
}

func (s *returnService) GetReturnedOrders(filter repository.ReturnedOrderFilter) ([]models.ReturnedOrder, error) {
	return s.returnedOrderRepo.List(filter)
}

// GetReturnedOrdersWithDetails lists returned orders with their item
// lines, return shipments and buyer profiles. Items come from one
// batched query; the remote lookups are best effort.
func (s *returnService) GetReturnedOrdersWithDetails(ctx context.Context, filter repository.ReturnedOrderFilter) ([]ReturnedOrderDetails, error) {
	returnedOrders, err := s.returnedOrderRepo.List(filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(returnedOrders))
	for _, returnedOrder := range returnedOrders {
		ids = append(ids, returnedOrder.ID)
	}
	items, err := s.returnedItemRepo.GetByReturnedOrderIDs(ids)
	if err != nil {
		return nil, err
	}
	byReturnedOrder := make(map[uint][]*models.ReturnedOrderItem)
	for _, item := range items {
		if item.ReturnedOrderID == nil {
			continue
		}
		byReturnedOrder[*item.ReturnedOrderID] = append(byReturnedOrder[*item.ReturnedOrderID], item)
	}

	details := make([]ReturnedOrderDetails, 0, len(returnedOrders))
	for _, returnedOrder := range returnedOrders {
		detail := ReturnedOrderDetails{
			ReturnedOrder: returnedOrder,
			Items:         byReturnedOrder[returnedOrder.ID],
		}

		lookupCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
		if shipment, err := s.shipment.GetByReturnedOrder(lookupCtx, returnedOrder.ID); err == nil {
			detail.Shipment = shipment
		}
		if info, err := s.user.GetInfo(lookupCtx, returnedOrder.UserID); err == nil {
			detail.User = info
		}
		cancel()

		details = append(details, detail)
	}
	return details, nil
}

func (s *returnService) GetReturnedOrderByID(id uint) (*models.ReturnedOrder, error) {
	returnedOrder, err := s.returnedOrderRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Returned order does not exist")
	}
	return returnedOrder, nil
}

// GetReturnedOrderDetails loads one returned order with its items and
// its return shipment. The shipment lookup is best effort.
func (s *returnService) GetReturnedOrderDetails(ctx context.Context, id uint) (*ReturnedOrderDetails, error) {
	returnedOrder, err := s.returnedOrderRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Returned order does not exist")
	}
	items, err := s.returnedItemRepo.GetByReturnedOrderID(id)
	if err != nil {
		return nil, err
	}

	details := &ReturnedOrderDetails{ReturnedOrder: *returnedOrder, Items: items}

	lookupCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()
	if shipment, err := s.shipment.GetByReturnedOrder(lookupCtx, id); err == nil {
		details.Shipment = shipment
	}

	return details, nil
}

func (s *returnService) notify(notification platform.Notification) {
	s.dispatch("notify "+notification.TargetType, func(ctx context.Context) error {
		return s.notification.Push(ctx, notification)
	})
}
