package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"order_service/internal/email"
	"order_service/pkg/platform"
	"order_service/pkg/storage"
)

// Gateways to the sibling services. Each is injected as an interface so
// tests can substitute fakes; pkg/platform provides the HTTP
// implementations.

type ProductGateway interface {
	CheckStock(ctx context.Context, products []platform.StockCheckItem) error
	RecordPurchase(ctx context.Context, record platform.PurchaseRecord) error
	MarkPurchaseCompleted(ctx context.Context, orderID uint) error
	ReleasePurchase(ctx context.Context, orderID uint) error
	UpdateReturnedQuantities(ctx context.Context, orderID uint, products []platform.PurchasedProduct) error
}

type CustomerGateway interface {
	RemoveCartItems(ctx context.Context, userID uint, productIDs []uint) error
}

type DiscountGateway interface {
	RestoreVoucher(ctx context.Context, orderID uint) error
}

type PaymentGateway interface {
	UpdateStatusByOrder(ctx context.Context, orderID uint, status string) error
}

type ShipmentGateway interface {
	CreateShippingOrder(ctx context.Context, order platform.ShippingOrder) error
	QuoteReturnShippingFee(ctx context.Context, customerShippingAddressID, sellerID uint) (float64, error)
	GetByOrder(ctx context.Context, orderID uint) (json.RawMessage, error)
	GetByReturnedOrder(ctx context.Context, returnedOrderID uint) (json.RawMessage, error)
}

type UserGateway interface {
	GetContact(ctx context.Context, userID uint) (*platform.UserContact, error)
	GetInfo(ctx context.Context, userID uint) (json.RawMessage, error)
}

type StoreGateway interface {
	CreditBalance(ctx context.Context, sellerID uint, amount float64) error
}

type NotificationGateway interface {
	Push(ctx context.Context, notification platform.Notification) error
}

// FileStorage stores return-request evidence images.
type FileStorage interface {
	UploadAll(ctx context.Context, files []storage.File) ([]storage.UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// Mailer sends the order confirmation bill.
type Mailer interface {
	SendOrderConfirmation(to, fullName string, orders []email.OrderBill) error
}

// outboundTimeout bounds every remote call, awaited or not. A timeout
// counts as a call failure under the discipline of its call site.
const outboundTimeout = 10 * time.Second

// Dispatcher runs a fire-and-forget side effect. Failures are logged
// and never surfaced; delivery is at most once.
type Dispatcher func(name string, fn func(ctx context.Context) error)

// AsyncDispatch runs the side effect on its own goroutine with a
// bounded context.
func AsyncDispatch(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), outboundTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("%s failed: %v", name, err)
		}
	}()
}
