// Package email sends the order confirmation bill over SMTP.
package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// ItemLine is one product row of the bill.
type ItemLine struct {
	ProductName string
	Quantity    int
	UnitPrice   float64
}

// OrderBill is the per-seller slice of a purchase shown in the bill.
type OrderBill struct {
	OrderID       uint
	SellerName    string
	CreatedAt     time.Time
	TotalQuantity int
	ShippingFee   float64
	TotalDiscount float64
	PaymentMethod string
	FinalTotal    float64
	Items         []ItemLine
}

// Service handles email sending via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation mails the buyer one bill covering every
// sub-order of the purchase.
func (s *Service) SendOrderConfirmation(to, fullName string, orders []OrderBill) error {
	subject := "Your order has been placed"
	body := buildOrderConfirmationBody(fullName, orders)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

func buildOrderConfirmationBody(fullName string, orders []OrderBill) string {
	var b strings.Builder

	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<p>Hello %s,</p><p>Your order has been placed successfully.</p>", fullName)

	var grandTotal float64
	for _, order := range orders {
		grandTotal += order.FinalTotal

		fmt.Fprintf(&b, "<h2>Order from %s</h2>", order.SellerName)
		b.WriteString(`<table border="1" cellpadding="6" cellspacing="0">`)
		fmt.Fprintf(&b, "<tr><th>Order ID</th><td>%d</td></tr>", order.OrderID)
		fmt.Fprintf(&b, "<tr><th>Seller</th><td>%s</td></tr>", order.SellerName)
		fmt.Fprintf(&b, "<tr><th>Created at</th><td>%s</td></tr>", order.CreatedAt.Format("02/01/2006"))
		fmt.Fprintf(&b, "<tr><th>Total quantity</th><td>%d</td></tr>", order.TotalQuantity)
		fmt.Fprintf(&b, "<tr><th>Shipping fee</th><td>%s</td></tr>", formatPrice(order.ShippingFee))
		fmt.Fprintf(&b, "<tr><th>Voucher discount</th><td>%s</td></tr>", formatPrice(order.TotalDiscount))
		fmt.Fprintf(&b, "<tr><th>Payment method</th><td>%s</td></tr>", order.PaymentMethod)
		fmt.Fprintf(&b, `<tr><th>Order total</th><td style="font-weight:bold;color:red;">%s</td></tr>`, formatPrice(order.FinalTotal))
		b.WriteString("</table><br>")

		b.WriteString(`<table border="1" cellpadding="6" cellspacing="0">`)
		b.WriteString("<tr><th>Product</th><th>Quantity</th><th>Unit price</th><th>Subtotal</th></tr>")
		for _, item := range order.Items {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
				item.ProductName, item.Quantity, formatPrice(item.UnitPrice),
				formatPrice(item.UnitPrice*float64(item.Quantity)))
		}
		b.WriteString("</table><br>")
	}

	fmt.Fprintf(&b, `<p>Grand total: <span style="font-weight:bold;color:red;font-size:1.5em;">%s</span></p>`, formatPrice(grandTotal))
	b.WriteString("<p>Thank you for shopping with us.</p></body></html>")
	return b.String()
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}
