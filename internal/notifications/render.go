package notifications

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var subjects = map[enums.NotificationKind]string{
	enums.NotificationKindOrderPlaced:  "Order Confirmation - Order #%s",
	enums.NotificationKindOrderShipped: "Order Shipped - Order #%s",
}

// Message is a rendered email ready for a Mailer.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type itemView struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

type orderView struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Address        string
	City           string
	PostalCode     string
	Total          decimal.Decimal
	TrackingNumber string
	Items          []itemView
}

func newOrderView(order *models.Order) orderView {
	view := orderView{
		ID:         order.ID,
		FirstName:  order.FirstName,
		LastName:   order.LastName,
		Address:    order.Address,
		City:       order.City,
		PostalCode: order.PostalCode,
		Total:      order.Total,
		Items:      make([]itemView, 0, len(order.Items)),
	}
	if order.TrackingNumber != nil {
		view.TrackingNumber = *order.TrackingNumber
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, itemView{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	return view
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Renderer builds the text and HTML bodies for each notification kind.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	text, err := texttemplate.New("text").
		Funcs(texttemplate.FuncMap{"money": money}).
		ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	html, err := htmltemplate.New("html").
		Funcs(htmltemplate.FuncMap{"money": money}).
		ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	return &Renderer{text: text, html: html}, nil
}

// Render produces the message for kind addressed to the order's customer.
func (r *Renderer) Render(kind enums.NotificationKind, order *models.Order) (*Message, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}
	if order == nil {
		return nil, fmt.Errorf("order required")
	}
	view := newOrderView(order)

	var text bytes.Buffer
	if err := r.text.ExecuteTemplate(&text, kind.String()+".txt.tmpl", view); err != nil {
		return nil, fmt.Errorf("render %s text: %w", kind, err)
	}
	var html bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, kind.String()+".html.tmpl", view); err != nil {
		return nil, fmt.Errorf("render %s html: %w", kind, err)
	}

	return &Message{
		To:      order.Email,
		ToName:  order.FirstName + " " + order.LastName,
		Subject: fmt.Sprintf(subjects[kind], order.ID),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
