package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"order_service/internal/email"
	"order_service/internal/models"
	"order_service/internal/repository"
	"order_service/pkg/platform"
)

type CreateOrderProduct struct {
	ProductID       uint    `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Price           float64 `json:"price"`
	Quantity        int     `json:"quantity"`
	ProductURLImage string  `json:"product_url_image"`
}

// StoreOrderInput is one seller's slice of a multi-seller purchase.
type StoreOrderInput struct {
	SellerID                                uint                 `json:"seller_id"`
	SellerName                              string               `json:"seller_name"`
	Products                                []CreateOrderProduct `json:"products"`
	OriginalItemsTotal                      float64              `json:"original_items_total"`
	OriginalShippingFee                     float64              `json:"original_shipping_fee"`
	DiscountAmountItems                     float64              `json:"discount_amount_items"`
	DiscountAmountShipping                  float64              `json:"discount_amount_shipping"`
	DiscountAmountItemsPlatformAllocated    float64              `json:"discount_amount_items_platform_allocated"`
	DiscountAmountShippingPlatformAllocated float64              `json:"discount_amount_shipping_platform_allocated"`
	TotalQuantity                           int                  `json:"total_quantity"`
}

type CreateOrdersInput struct {
	UserID        uint              `json:"user_id"`
	PaymentMethod string            `json:"payment_method"`
	PaymentStatus string            `json:"payment_status"`
	Stores        []StoreOrderInput `json:"stores"`
}

// StoreOrderFailure reports one seller sub-order that could not be
// created. Sub-orders are independent; one failing does not roll back
// the others.
type StoreOrderFailure struct {
	SellerID   uint   `json:"seller_id"`
	SellerName string `json:"seller_name"`
	Error      string `json:"error"`
}

type CreateOrdersResult struct {
	Orders   []models.Order      `json:"orders"`
	Failures []StoreOrderFailure `json:"failures,omitempty"`
}

type UpdateOrderInput struct {
	PaymentStatus string `json:"payment_status"`
	OrderStatus   string `json:"order_status"`
}

// OrderStatusCount groups orders for the seller dashboard.
type OrderStatusCount struct {
	Pending             int `json:"pending"`
	Confirmed           int `json:"confirmed"`
	ReadyToShipShipping int `json:"ready_to_ship_shipping"`
	Delivered           int `json:"delivered"`
	CancelledRefunded   int `json:"cancelled_refunded"`
	Total               int `json:"total"`
}

// OrderDetails enriches an order with its shipment and buyer profile
// fetched from the shipment and user services; either may be null when
// the lookup fails.
type OrderDetails struct {
	models.Order
	Shipment json.RawMessage `json:"shipment"`
	User     json.RawMessage `json:"user"`
}

type OrdersWithDetails struct {
	Orders      []OrderDetails   `json:"orders"`
	StatusCount OrderStatusCount `json:"status_count"`
	Total       int              `json:"total"`
}

type OrderService interface {
	CreateOrders(ctx context.Context, input CreateOrdersInput) (*CreateOrdersResult, error)
	UpdateOrder(ctx context.Context, id uint, input UpdateOrderInput) (*models.Order, error)
	CancelOrder(ctx context.Context, id uint) (*models.Order, error)
	GetOrders(filter repository.OrderFilter) ([]models.Order, error)
	GetOrdersByIDs(ids []uint) ([]models.Order, error)
	GetOrderByID(id uint) (*models.Order, error)
	GetOrderItems(orderID uint) ([]*models.OrderItem, error)
	GetOrdersWithDetails(ctx context.Context, filter repository.OrderFilter) (*OrdersWithDetails, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository

	product       ProductGateway
	directProduct ProductGateway
	customer      CustomerGateway
	discount      DiscountGateway
	payment       PaymentGateway
	shipment      ShipmentGateway
	user          UserGateway
	store         StoreGateway
	notification  NotificationGateway
	mailer        Mailer

	dispatch        Dispatcher
	sellerShareRate float64
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	product, directProduct ProductGateway,
	customer CustomerGateway,
	discount DiscountGateway,
	payment PaymentGateway,
	shipment ShipmentGateway,
	user UserGateway,
	store StoreGateway,
	notification NotificationGateway,
	mailer Mailer,
	dispatch Dispatcher,
	sellerShareRate float64,
) OrderService {
	return &orderService{
		orderRepo:       orderRepo,
		orderItemRepo:   orderItemRepo,
		product:         product,
		directProduct:   directProduct,
		customer:        customer,
		discount:        discount,
		payment:         payment,
		shipment:        shipment,
		user:            user,
		store:           store,
		notification:    notification,
		mailer:          mailer,
		dispatch:        dispatch,
		sellerShareRate: sellerShareRate,
	}
}

// CreateOrders creates one order per seller group. Stock is verified in
// one batched call first; each sub-order then commits in its own
// transaction, in parallel, so one seller's failure does not undo
// another's order.
func (s *orderService) CreateOrders(ctx context.Context, input CreateOrdersInput) (*CreateOrdersResult, error) {
	var errs []string
	if input.UserID == 0 {
		errs = append(errs, "user_id is required")
	}
	if input.PaymentMethod == "" {
		errs = append(errs, "payment_method is required")
	}
	if input.PaymentStatus == "" {
		errs = append(errs, "payment_status is required")
	}
	if len(input.Stores) == 0 {
		errs = append(errs, "stores is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	var stockItems []platform.StockCheckItem
	for _, store := range input.Stores {
		for _, product := range store.Products {
			stockItems = append(stockItems, platform.StockCheckItem{
				ID:       product.ProductID,
				Name:     product.ProductName,
				Quantity: product.Quantity,
			})
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()
	if err := s.product.CheckStock(checkCtx, stockItems); err != nil {
		return nil, upstreamOrConflict("check stock", err)
	}

	type storeResult struct {
		order   *models.Order
		items   []*models.OrderItem
		failure *StoreOrderFailure
	}

	results := make([]storeResult, len(input.Stores))
	var wg sync.WaitGroup
	for i := range input.Stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := input.Stores[i]
			order, items, err := s.createStoreOrder(input, store)
			if err != nil {
				results[i].failure = &StoreOrderFailure{
					SellerID:   store.SellerID,
					SellerName: store.SellerName,
					Error:      err.Error(),
				}
				return
			}
			results[i].order = order
			results[i].items = items
			s.dispatchCreationSideEffects(input.UserID, order, items)
		}(i)
	}
	wg.Wait()

	result := &CreateOrdersResult{}
	var bills []email.OrderBill
	for _, r := range results {
		if r.failure != nil {
			result.Failures = append(result.Failures, *r.failure)
			continue
		}
		result.Orders = append(result.Orders, *r.order)
		bills = append(bills, buildOrderBill(r.order, r.items))
	}

	if len(result.Orders) == 0 {
		return nil, fmt.Errorf("failed to create any order: %s", result.Failures[0].Error)
	}

	s.dispatch("order confirmation email", func(ctx context.Context) error {
		contact, err := s.user.GetContact(ctx, input.UserID)
		if err != nil {
			return err
		}
		return s.mailer.SendOrderConfirmation(contact.Email, contact.FullName, bills)
	})

	return result, nil
}

func (s *orderService) createStoreOrder(input CreateOrdersInput, store StoreOrderInput) (*models.Order, []*models.OrderItem, error) {
	order := &models.Order{
		UserID:                                  input.UserID,
		SellerID:                                store.SellerID,
		SellerName:                              store.SellerName,
		TotalQuantity:                           store.TotalQuantity,
		OriginalItemsTotal:                      store.OriginalItemsTotal,
		OriginalShippingFee:                     store.OriginalShippingFee,
		DiscountAmountItems:                     store.DiscountAmountItems,
		DiscountAmountShipping:                  store.DiscountAmountShipping,
		DiscountAmountItemsPlatformAllocated:    store.DiscountAmountItemsPlatformAllocated,
		DiscountAmountShippingPlatformAllocated: store.DiscountAmountShippingPlatformAllocated,
		PaymentMethod:                           input.PaymentMethod,
		PaymentStatus:                           input.PaymentStatus,
		OrderStatus:                             models.OrderPending,
	}
	order.ComputeFinalTotal()
	order.RefreshCompleted()

	items := make([]*models.OrderItem, 0, len(store.Products))
	for _, product := range store.Products {
		items = append(items, &models.OrderItem{
			ProductID:       product.ProductID,
			ProductName:     product.ProductName,
			ProductPrice:    product.Price,
			ProductQuantity: product.Quantity,
			ProductURLImage: product.ProductURLImage,
		})
	}

	if err := s.orderRepo.CreateWithItems(order, items); err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

func (s *orderService) dispatchCreationSideEffects(userID uint, order *models.Order, items []*models.OrderItem) {
	listProduct := make([]platform.PurchasedProduct, 0, len(items))
	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		listProduct = append(listProduct, platform.PurchasedProduct{
			ProductID:  item.ProductID,
			Quantity:   item.ProductQuantity,
			TotalPrice: item.ProductPrice * float64(item.ProductQuantity),
		})
		productIDs = append(productIDs, item.ProductID)
	}

	s.dispatch("record purchase", func(ctx context.Context) error {
		return s.product.RecordPurchase(ctx, platform.PurchaseRecord{
			UserID:      userID,
			OrderID:     order.ID,
			SellerID:    order.SellerID,
			ListProduct: listProduct,
		})
	})
	s.dispatch("remove cart items", func(ctx context.Context) error {
		return s.customer.RemoveCartItems(ctx, userID, productIDs)
	})
	s.notify(platform.Notification{
		TargetType: platform.TargetSeller,
		StoreID:    order.SellerID,
		Title:      "New order awaiting confirmation",
		Body:       fmt.Sprintf("Order #%d has been created, please confirm it", order.ID),
	})
	s.notify(platform.Notification{
		TargetType: platform.TargetCustomer,
		TargetID:   userID,
		Title:      "Order placed",
		Body:       fmt.Sprintf("Order #%d has been placed successfully", order.ID),
	})
}

// UpdateOrder applies a partial status update under a row lock. When
// the update completes the order, the purchased-product ledger and the
// seller balance are updated synchronously and their failures propagate;
// the notification fan-out stays best effort.
func (s *orderService) UpdateOrder(ctx context.Context, id uint, input UpdateOrderInput) (*models.Order, error) {
	var errs []string
	if input.OrderStatus != "" && !models.ValidOrderStatus(input.OrderStatus) {
		errs = append(errs, "order_status must be pending, confirmed, ready_to_ship, shipping, delivered, cancelled or refunded")
	}
	if input.PaymentStatus != "" && !models.ValidPaymentStatus(input.PaymentStatus) {
		errs = append(errs, "payment_status must be pending, completed, failed, cancelled or refunded")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	order, err := s.orderRepo.UpdateWithLock(id, func(order *models.Order) error {
		if order.IsCompleted {
			return &ConflictError{Message: "Order already completed, cannot update"}
		}
		if input.OrderStatus != "" {
			order.OrderStatus = input.OrderStatus
		}
		if input.PaymentStatus != "" {
			order.PaymentStatus = input.PaymentStatus
		}
		order.RefreshCompleted()
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "Order does not exist")
	}

	if order.IsCompleted {
		completeCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
		defer cancel()
		if err := s.directProduct.MarkPurchaseCompleted(completeCtx, order.ID); err != nil {
			return nil, upstreamOrConflict("mark purchase completed", err)
		}
		if err := s.store.CreditBalance(completeCtx, order.SellerID, order.FinalTotal*s.sellerShareRate); err != nil {
			return nil, upstreamOrConflict("credit seller balance", err)
		}
	}

	if input.OrderStatus != "" {
		s.notifyOrderStatus(order, input.OrderStatus)
	}
	if input.PaymentStatus == models.PaymentCompleted {
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   order.UserID,
			Title:      "Payment successful",
			Body:       fmt.Sprintf("Order #%d has been paid successfully.", order.ID),
		})
	}

	return order, nil
}

// notifyOrderStatus fans out the per-status notifications. Confirmed
// additionally books the shipment.
func (s *orderService) notifyOrderStatus(order *models.Order, orderStatus string) {
	switch orderStatus {
	case models.OrderConfirmed:
		s.notify(platform.Notification{
			TargetType: platform.TargetSeller,
			StoreID:    order.SellerID,
			Title:      "Order confirmed",
			Body:       fmt.Sprintf("Order #%d has been confirmed, please prepare it for delivery.", order.ID),
		})
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   order.UserID,
			Title:      "Order confirmed",
			Body:       fmt.Sprintf("Your order #%d has been confirmed and will be delivered soon.", order.ID),
		})
		s.notify(platform.Notification{
			TargetType: platform.TargetShipper,
			Title:      "New delivery order created",
			Body:       fmt.Sprintf("A shipping order for order #%d has been created. Please go to the pickup point.", order.ID),
		})
		s.dispatch("create shipment", func(ctx context.Context) error {
			return s.shipment.CreateShippingOrder(ctx, platform.ShippingOrder{
				OrderID:  order.ID,
				UserID:   order.UserID,
				SellerID: order.SellerID,
			})
		})
	case models.OrderReadyToShip:
		s.notify(platform.Notification{
			TargetType: platform.TargetSeller,
			StoreID:    order.SellerID,
			Title:      "Order picked up",
			Body:       fmt.Sprintf("Order #%d has been picked up successfully.", order.ID),
		})
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   order.UserID,
			Title:      "Order picked up",
			Body:       fmt.Sprintf("Your order #%d has been picked up successfully.", order.ID),
		})
	case models.OrderShipping:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   order.UserID,
			Title:      "Order on the way",
			Body:       fmt.Sprintf("Your order #%d is being delivered.", order.ID),
		})
	case models.OrderDelivered:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   order.UserID,
			Title:      "Order delivered",
			Body:       fmt.Sprintf("Your order #%d has been delivered successfully. Thank you for shopping!", order.ID),
		})
	case models.OrderCancelled:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   order.UserID,
			Title:      "Order cancelled",
			Body:       fmt.Sprintf("Your order #%d has been cancelled.", order.ID),
		})
		s.notify(platform.Notification{
			TargetType: platform.TargetSeller,
			TargetID:   order.SellerID,
			StoreID:    order.SellerID,
			Title:      "Order cancelled",
			Body:       fmt.Sprintf("Order #%d has been cancelled by the customer.", order.ID),
		})
	case models.OrderRefunded:
		s.notify(platform.Notification{
			TargetType: platform.TargetCustomer,
			TargetID:   order.UserID,
			Title:      "Order refunded",
			Body:       fmt.Sprintf("Your order #%d has been refunded.", order.ID),
		})
	}
}

// CancelOrder cancels an order that is still fully pending. The
// payment, stock and voucher compensations are best effort; their
// failures never reach the caller.
func (s *orderService) CancelOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.UpdateWithLock(id, func(order *models.Order) error {
		if order.IsCompleted {
			return &ConflictError{Message: "Order already completed, cannot cancel"}
		}
		if order.PaymentStatus != models.PaymentPending {
			return &ConflictError{Message: "Order already paid, cannot cancel"}
		}
		if order.OrderStatus != models.OrderPending {
			return &ConflictError{Message: "Order already being processed, cannot cancel"}
		}
		order.OrderStatus = models.OrderCancelled
		order.RefreshCompleted()
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "Order does not exist")
	}

	s.dispatch("cancel payment", func(ctx context.Context) error {
		return s.payment.UpdateStatusByOrder(ctx, order.ID, models.PaymentCancelled)
	})
	s.dispatch("release purchased products", func(ctx context.Context) error {
		return s.product.ReleasePurchase(ctx, order.ID)
	})
	s.dispatch("restore voucher", func(ctx context.Context) error {
		return s.discount.RestoreVoucher(ctx, order.ID)
	})

	return order, nil
}

func (s *orderService) GetOrders(filter repository.OrderFilter) ([]models.Order, error) {
	return s.orderRepo.List(filter)
}

func (s *orderService) GetOrdersByIDs(ids []uint) ([]models.Order, error) {
	return s.orderRepo.GetByIDs(ids)
}

func (s *orderService) GetOrderByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Order does not exist")
	}
	return order, nil
}

func (s *orderService) GetOrderItems(orderID uint) ([]*models.OrderItem, error) {
	items, err := s.orderItemRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &NotFoundError{Message: "Order details do not exist"}
	}
	return items, nil
}

// GetOrdersWithDetails lists filtered orders enriched with shipment and
// buyer info, plus grouped status counts over the seller's whole order
// book. Enrichment lookups are best effort.
func (s *orderService) GetOrdersWithDetails(ctx context.Context, filter repository.OrderFilter) (*OrdersWithDetails, error) {
	orders, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, err
	}

	allOrders, err := s.orderRepo.List(repository.OrderFilter{SellerID: filter.SellerID})
	if err != nil {
		return nil, err
	}
	var counts OrderStatusCount
	for _, order := range allOrders {
		counts.Total++
		switch order.OrderStatus {
		case models.OrderPending:
			counts.Pending++
		case models.OrderConfirmed:
			counts.Confirmed++
		case models.OrderReadyToShip, models.OrderShipping:
			counts.ReadyToShipShipping++
		case models.OrderDelivered:
			counts.Delivered++
		case models.OrderCancelled, models.OrderRefunded:
			counts.CancelledRefunded++
		}
	}

	details := make([]OrderDetails, 0, len(orders))
	for _, order := range orders {
		detail := OrderDetails{Order: order}

		lookupCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
		if shipment, err := s.shipment.GetByOrder(lookupCtx, order.ID); err == nil {
			detail.Shipment = shipment
		}
		if info, err := s.user.GetInfo(lookupCtx, order.UserID); err == nil {
			detail.User = info
		}
		cancel()

		details = append(details, detail)
	}

	return &OrdersWithDetails{
		Orders:      details,
		StatusCount: counts,
		Total:       len(orders),
	}, nil
}

func (s *orderService) notify(notification platform.Notification) {
	s.dispatch("notify "+notification.TargetType, func(ctx context.Context) error {
		return s.notification.Push(ctx, notification)
	})
}

func buildOrderBill(order *models.Order, items []*models.OrderItem) email.OrderBill {
	bill := email.OrderBill{
		OrderID:       order.ID,
		SellerName:    order.SellerName,
		CreatedAt:     order.CreatedAt,
		TotalQuantity: order.TotalQuantity,
		ShippingFee:   order.OriginalShippingFee,
		TotalDiscount: order.TotalDiscount(),
		PaymentMethod: order.PaymentMethod,
		FinalTotal:    order.FinalTotal,
	}
	for _, item := range items {
		bill.Items = append(bill.Items, email.ItemLine{
			ProductName: item.ProductName,
			Quantity:    item.ProductQuantity,
			UnitPrice:   item.ProductPrice,
		})
	}
	return bill
}
