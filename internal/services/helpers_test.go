package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"order_service/internal/email"
	"order_service/internal/models"
	"order_service/internal/repository"
	"order_service/pkg/platform"
	"order_service/pkg/storage"

	"gorm.io/gorm"
)

// syncDispatch runs side effects inline so tests can assert on them
// deterministically.
func syncDispatch(name string, fn func(ctx context.Context) error) {
	fn(context.Background())
}

type statusWrite struct {
	orderID       uint
	orderStatus   string
	paymentStatus string
}

type fakeOrderRepo struct {
	mu            sync.Mutex
	orders        map[uint]*models.Order
	nextID        uint
	failForSeller uint
	listCalls     int
	statusWrites  []statusWrite
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uint]*models.Order{}}
}

func (r *fakeOrderRepo) add(order models.Order) *models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == 0 {
		r.nextID++
		order.ID = r.nextID
	} else if order.ID > r.nextID {
		r.nextID = order.ID
	}
	r.orders[order.ID] = &order
	return &order
}

func (r *fakeOrderRepo) CreateWithItems(order *models.Order, items []*models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failForSeller != 0 && order.SellerID == r.failForSeller {
		return fmt.Errorf("insert failed for seller %d", order.SellerID)
	}
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	for _, item := range items {
		item.OrderID = order.ID
	}
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) GetByIDs(ids []uint) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []models.Order
	for _, id := range ids {
		if order, ok := r.orders[id]; ok {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) List(filter repository.OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var orders []models.Order
	for _, order := range r.orders {
		if filter.UserID > 0 && order.UserID != filter.UserID {
			continue
		}
		if filter.SellerID > 0 && order.SellerID != filter.SellerID {
			continue
		}
		if filter.CompletedOnly && !order.IsCompleted {
			continue
		}
		if len(filter.OrderStatuses) > 0 {
			found := false
			for _, status := range filter.OrderStatuses {
				if order.OrderStatus == status {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (r *fakeOrderRepo) UpdateWithLock(id uint, apply func(*models.Order) error) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := apply(order); err != nil {
		return nil, err
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) UpdateStatuses(id uint, orderStatus, paymentStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusWrites = append(r.statusWrites, statusWrite{id, orderStatus, paymentStatus})
	if order, ok := r.orders[id]; ok {
		order.OrderStatus = orderStatus
		order.PaymentStatus = paymentStatus
	}
	return nil
}

type fakeOrderItemRepo struct {
	mu    sync.Mutex
	items []*models.OrderItem
}

func (r *fakeOrderItemRepo) GetByOrderID(orderID uint) ([]*models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*models.OrderItem
	for _, item := range r.items {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *fakeOrderItemRepo) GetByOrderIDs(orderIDs []uint) ([]*models.OrderItem, error) {
	var items []*models.OrderItem
	for _, id := range orderIDs {
		found, _ := r.GetByOrderID(id)
		items = append(items, found...)
	}
	return items, nil
}

type fakeReturnRequestRepo struct {
	mu       sync.Mutex
	requests map[uint]*models.OrderReturnRequest
	items    *fakeReturnedItemRepo
	nextID   uint
	deleted  []uint
}

func newFakeReturnRequestRepo(items *fakeReturnedItemRepo) *fakeReturnRequestRepo {
	return &fakeReturnRequestRepo{requests: map[uint]*models.OrderReturnRequest{}, items: items}
}

func (r *fakeReturnRequestRepo) add(request models.OrderReturnRequest) *models.OrderReturnRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID == 0 {
		r.nextID++
		request.ID = r.nextID
	} else if request.ID > r.nextID {
		r.nextID = request.ID
	}
	r.requests[request.ID] = &request
	return &request
}

func (r *fakeReturnRequestRepo) CreateWithItems(request *models.OrderReturnRequest, items []*models.ReturnedOrderItem) error {
	r.mu.Lock()
	r.nextID++
	request.ID = r.nextID
	stored := *request
	r.requests[request.ID] = &stored
	r.mu.Unlock()
	for _, item := range items {
		item.OrderReturnRequestID = request.ID
		r.items.add(item)
	}
	return nil
}

func (r *fakeReturnRequestRepo) GetByID(id uint) (*models.OrderReturnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *fakeReturnRequestRepo) GetActiveByOrderID(orderID uint) (*models.OrderReturnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.OrderID == orderID &&
			(request.Status == models.ReturnRequested || request.Status == models.ReturnAccepted) {
			copied := *request
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeReturnRequestRepo) GetAwaitingResponse(id uint) (*models.OrderReturnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok || (request.Status != models.ReturnRequested && request.Status != models.ReturnRejected) {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *fakeReturnRequestRepo) List(filter repository.ReturnRequestFilter) ([]models.OrderReturnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var requests []models.OrderReturnRequest
	for _, request := range r.requests {
		if filter.SellerID > 0 && request.SellerID != filter.SellerID {
			continue
		}
		if filter.UserID > 0 && request.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		requests = append(requests, *request)
	}
	return requests, nil
}

func (r *fakeReturnRequestRepo) Update(request *models.OrderReturnRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *fakeReturnRequestRepo) Delete(request *models.OrderReturnRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, request.ID)
	r.deleted = append(r.deleted, request.ID)
	return nil
}

type fakeReturnedOrderRepo struct {
	mu             sync.Mutex
	returnedOrders map[uint]*models.ReturnedOrder
	requests       *fakeReturnRequestRepo
	nextID         uint
}

func newFakeReturnedOrderRepo(requests *fakeReturnRequestRepo) *fakeReturnedOrderRepo {
	return &fakeReturnedOrderRepo{returnedOrders: map[uint]*models.ReturnedOrder{}, requests: requests}
}

func (r *fakeReturnedOrderRepo) add(returnedOrder models.ReturnedOrder) *models.ReturnedOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	if returnedOrder.ID == 0 {
		r.nextID++
		returnedOrder.ID = r.nextID
	} else if returnedOrder.ID > r.nextID {
		r.nextID = returnedOrder.ID
	}
	r.returnedOrders[returnedOrder.ID] = &returnedOrder
	return &returnedOrder
}

func (r *fakeReturnedOrderRepo) CreateFromRequest(request *models.OrderReturnRequest, returnedOrder *models.ReturnedOrder, items []*models.ReturnedOrderItem) error {
	if r.requests != nil {
		r.requests.Update(request)
	}
	r.mu.Lock()
	r.nextID++
	returnedOrder.ID = r.nextID
	stored := *returnedOrder
	r.returnedOrders[returnedOrder.ID] = &stored
	r.mu.Unlock()
	for _, item := range items {
		id := returnedOrder.ID
		item.ReturnedOrderID = &id
	}
	return nil
}

func (r *fakeReturnedOrderRepo) GetByID(id uint) (*models.ReturnedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	returnedOrder, ok := r.returnedOrders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *returnedOrder
	return &copied, nil
}

func (r *fakeReturnedOrderRepo) List(filter repository.ReturnedOrderFilter) ([]models.ReturnedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var returnedOrders []models.ReturnedOrder
	for _, returnedOrder := range r.returnedOrders {
		if filter.SellerID > 0 && returnedOrder.SellerID != filter.SellerID {
			continue
		}
		if filter.UserID > 0 && returnedOrder.UserID != filter.UserID {
			continue
		}
		if filter.CompletedOnly && !returnedOrder.IsCompleted {
			continue
		}
		returnedOrders = append(returnedOrders, *returnedOrder)
	}
	return returnedOrders, nil
}

func (r *fakeReturnedOrderRepo) UpdateWithLock(id uint, apply func(*models.ReturnedOrder) error) (*models.ReturnedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	returnedOrder, ok := r.returnedOrders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := apply(returnedOrder); err != nil {
		return nil, err
	}
	copied := *returnedOrder
	return &copied, nil
}

type fakeReturnedItemRepo struct {
	mu    sync.Mutex
	items []*models.ReturnedOrderItem
}

func (r *fakeReturnedItemRepo) add(item *models.ReturnedOrderItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == 0 {
		item.ID = uint(len(r.items) + 1)
	}
	r.items = append(r.items, item)
}

func (r *fakeReturnedItemRepo) GetByRequestID(requestID uint) ([]*models.ReturnedOrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*models.ReturnedOrderItem
	for _, item := range r.items {
		if item.OrderReturnRequestID == requestID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *fakeReturnedItemRepo) GetByReturnedOrderID(returnedOrderID uint) ([]*models.ReturnedOrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*models.ReturnedOrderItem
	for _, item := range r.items {
		if item.ReturnedOrderID != nil && *item.ReturnedOrderID == returnedOrderID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *fakeReturnedItemRepo) GetByReturnedOrderIDs(returnedOrderIDs []uint) ([]*models.ReturnedOrderItem, error) {
	var items []*models.ReturnedOrderItem
	for _, id := range returnedOrderIDs {
		found, _ := r.GetByReturnedOrderID(id)
		items = append(items, found...)
	}
	return items, nil
}

type fakeProductGateway struct {
	mu               sync.Mutex
	checkStockErr    error
	markCompletedErr error
	stockChecks      [][]platform.StockCheckItem
	purchases        []platform.PurchaseRecord
	completedOrders  []uint
	releasedOrders   []uint
	returnedWrites   []uint
	returnedProducts [][]platform.PurchasedProduct
}

func (g *fakeProductGateway) CheckStock(ctx context.Context, products []platform.StockCheckItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stockChecks = append(g.stockChecks, products)
	return g.checkStockErr
}

func (g *fakeProductGateway) RecordPurchase(ctx context.Context, record platform.PurchaseRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.purchases = append(g.purchases, record)
	return nil
}

func (g *fakeProductGateway) MarkPurchaseCompleted(ctx context.Context, orderID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.markCompletedErr != nil {
		return g.markCompletedErr
	}
	g.completedOrders = append(g.completedOrders, orderID)
	return nil
}

func (g *fakeProductGateway) ReleasePurchase(ctx context.Context, orderID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.releasedOrders = append(g.releasedOrders, orderID)
	return nil
}

func (g *fakeProductGateway) UpdateReturnedQuantities(ctx context.Context, orderID uint, products []platform.PurchasedProduct) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.returnedWrites = append(g.returnedWrites, orderID)
	g.returnedProducts = append(g.returnedProducts, products)
	return nil
}

type fakeCustomerGateway struct {
	mu       sync.Mutex
	removals [][]uint
}

func (g *fakeCustomerGateway) RemoveCartItems(ctx context.Context, userID uint, productIDs []uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removals = append(g.removals, productIDs)
	return nil
}

type fakeDiscountGateway struct {
	mu       sync.Mutex
	restored []uint
}

func (g *fakeDiscountGateway) RestoreVoucher(ctx context.Context, orderID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restored = append(g.restored, orderID)
	return nil
}

type fakePaymentGateway struct {
	mu      sync.Mutex
	updates []statusWrite
}

func (g *fakePaymentGateway) UpdateStatusByOrder(ctx context.Context, orderID uint, status string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates = append(g.updates, statusWrite{orderID: orderID, paymentStatus: status})
	return nil
}

type fakeShipmentGateway struct {
	mu       sync.Mutex
	created  []platform.ShippingOrder
	quote    float64
	quoteErr error
}

func (g *fakeShipmentGateway) CreateShippingOrder(ctx context.Context, order platform.ShippingOrder) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, order)
	return nil
}

func (g *fakeShipmentGateway) QuoteReturnShippingFee(ctx context.Context, customerShippingAddressID, sellerID uint) (float64, error) {
	if g.quoteErr != nil {
		return 0, g.quoteErr
	}
	return g.quote, nil
}

func (g *fakeShipmentGateway) GetByOrder(ctx context.Context, orderID uint) (json.RawMessage, error) {
	return json.RawMessage(`{"id":1}`), nil
}

func (g *fakeShipmentGateway) GetByReturnedOrder(ctx context.Context, returnedOrderID uint) (json.RawMessage, error) {
	return json.RawMessage(`{"id":1}`), nil
}

type fakeUserGateway struct {
	contact platform.UserContact
}

func (g *fakeUserGateway) GetContact(ctx context.Context, userID uint) (*platform.UserContact, error) {
	contact := g.contact
	return &contact, nil
}

func (g *fakeUserGateway) GetInfo(ctx context.Context, userID uint) (json.RawMessage, error) {
	return json.RawMessage(`{"id":1}`), nil
}

type fakeStoreGateway struct {
	mu      sync.Mutex
	credits map[uint]float64
}

func (g *fakeStoreGateway) CreditBalance(ctx context.Context, sellerID uint, amount float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.credits == nil {
		g.credits = map[uint]float64{}
	}
	g.credits[sellerID] += amount
	return nil
}

type fakeNotificationGateway struct {
	mu            sync.Mutex
	notifications []platform.Notification
}

func (g *fakeNotificationGateway) Push(ctx context.Context, notification platform.Notification) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = append(g.notifications, notification)
	return nil
}

func (g *fakeNotificationGateway) byTarget(targetType string) []platform.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	var matched []platform.Notification
	for _, notification := range g.notifications {
		if notification.TargetType == targetType {
			matched = append(matched, notification)
		}
	}
	return matched
}

type fakeFileStorage struct {
	mu        sync.Mutex
	uploads   int
	deleted   []string
	uploadErr error
}

func (s *fakeFileStorage) UploadAll(ctx context.Context, files []storage.File) ([]storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	var results []storage.UploadResult
	for range files {
		s.uploads++
		results = append(results, storage.UploadResult{
			URL:      fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/v1/evidence/img-%d.jpg", s.uploads),
			PublicID: fmt.Sprintf("evidence/img-%d", s.uploads),
		})
	}
	return results, nil
}

func (s *fakeFileStorage) Delete(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, publicID)
	return nil
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  int
	to    string
	bills []email.OrderBill
}

func (m *fakeMailer) SendOrderConfirmation(to, fullName string, orders []email.OrderBill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	m.to = to
	m.bills = orders
	return nil
}

type fakeReportCache struct {
	mu     sync.Mutex
	values map[string][]byte
	sets   int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{values: map[string][]byte{}}
}

func (c *fakeReportCache) SetReport(key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	c.sets++
	return nil
}

func (c *fakeReportCache) GetReport(key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.values[key]
	if !ok {
		return fmt.Errorf("cache miss")
	}
	return json.Unmarshal(data, dest)
}
