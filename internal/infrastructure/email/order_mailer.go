// Package email envía el correo de confirmación de orden vía SendGrid.
package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ checkout.OrderPlacedHook = (*OrderMailer)(nil)

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// OrderMailer confirma la orden al cliente.
type OrderMailer struct {
	client   sender
	users    repository.UserRepository
	from     *mail.Email
	currency string
}

// NewOrderMailer construye el notificador con la API key de SendGrid.
func NewOrderMailer(apiKey, senderAddr, senderName, currency string, users repository.UserRepository) *OrderMailer {
	return &OrderMailer{
		client:   sendgrid.NewSendClient(apiKey),
		users:    users,
		from:     mail.NewEmail(senderName, senderAddr),
		currency: currency,
	}
}

// OrderPlaced implementa checkout.OrderPlacedHook. Sin email registrado no envía nada.
func (m *OrderMailer) OrderPlaced(ctx context.Context, o *entity.Order) error {
	user, err := m.users.GetByID(ctx, o.UserID)
	if err != nil {
		return fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil || user.Email == "" {
		return nil
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	subject := fmt.Sprintf("Confirmación de tu orden %s", shortID(o.ID))
	plain, htmlBody := m.render(name, o)

	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail(name, user.Email), plain, htmlBody)
	res, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (m *OrderMailer) render(name string, o *entity.Order) (string, string) {
	var plain, rows strings.Builder
	fmt.Fprintf(&plain, "Hola %s,\n\nRecibimos tu orden %s.\n\n", name, shortID(o.ID))
	for _, it := range o.Items {
		fmt.Fprintf(&plain, "- %d x %s: %s %s\n", it.Quantity, it.Name, it.Subtotal.StringFixed(2), m.currency)
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td style=\"text-align:right\">%s %s</td></tr>",
			it.Quantity, html.EscapeString(it.Name), it.Subtotal.StringFixed(2), m.currency)
	}
	fmt.Fprintf(&plain, "\nTotal: %s %s\n\nGracias por tu compra.\n", o.Total.StringFixed(2), m.currency)

	htmlBody := fmt.Sprintf(
		"<p>Hola %s,</p><p>Recibimos tu orden <strong>%s</strong>.</p>"+
			"<table>%s</table><p><strong>Total: %s %s</strong></p><p>Gracias por tu compra.</p>",
		html.EscapeString(name), shortID(o.ID), rows.String(), o.Total.StringFixed(2), m.currency)
	return plain.String(), htmlBody
}

// shortID primeros 8 caracteres del id, como se muestra en el comprobante.
func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
