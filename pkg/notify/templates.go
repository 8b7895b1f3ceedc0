package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/example/fooddash/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	templateConfirmation = "order_confirmation.html"
	templateReceipt      = "order_receipt.html"

	displayTimeLayout = "Jan 2, 2006 15:04 MST"
)

var templates = template.Must(
	template.New("notify").
		Funcs(template.FuncMap{"money": formatMoney}).
		ParseFS(templateFS, "templates/*.html"),
)

func formatMoney(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}

type emailItem struct {
	Name       string
	Restaurant string
	Quantity   int
	Price      float64
	Subtotal   float64
}

type emailData struct {
	OrderID           string
	CustomerName      string
	OrderDate         string
	Items             []emailItem
	Total             float64
	PaymentMethod     string
	PaymentStatus     string
	Address           string
	Instructions      string
	EstimatedDelivery string
}

func newEmailData(order *models.Order, to Recipient, loc *time.Location) emailData {
	if loc == nil {
		loc = time.UTC
	}
	items := make([]emailItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, emailItem{
			Name:       item.ProductName,
			Restaurant: item.RestaurantName,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Subtotal:   item.Subtotal(),
		})
	}
	name := to.Name
	if name == "" {
		name = "Customer"
	}
	return emailData{
		OrderID:           order.ID.Hex(),
		CustomerName:      name,
		OrderDate:         order.OrderDate.In(loc).Format(displayTimeLayout),
		Items:             items,
		Total:             order.TotalAmount,
		PaymentMethod:     string(order.PaymentMethod),
		PaymentStatus:     string(order.PaymentStatus),
		Address:           order.DeliveryAddress.String(),
		Instructions:      order.DeliveryInstructions,
		EstimatedDelivery: order.EstimatedDeliveryTime.In(loc).Format(displayTimeLayout),
	}
}

// RenderConfirmation builds the order-placed email.
func RenderConfirmation(order *models.Order, to Recipient, loc *time.Location) (subject, body string, err error) {
	body, err = render(templateConfirmation, newEmailData(order, to, loc))
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Order confirmed #%s", order.ID.Hex()), body, nil
}

// RenderReceipt builds the billing receipt sent once the order is received.
func RenderReceipt(order *models.Order, to Recipient, loc *time.Location) (subject, body string, err error) {
	body, err = render(templateReceipt, newEmailData(order, to, loc))
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Your receipt for order #%s", order.ID.Hex()), body, nil
}

func render(name string, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return buf.String(), nil
}
