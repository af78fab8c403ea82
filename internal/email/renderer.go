package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	pkgemail "github.com/teomanager/teomanager-backend/pkg/email"
	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// Renderer turns a stored outbox row into a deliverable message. Payloads
// are the loose maps the services enqueued; missing fields render empty
// rather than failing the send.
type Renderer struct {
	templates map[enums.EmailKind]*htmltemplate.Template
}

type templateData struct {
	FirstName   string
	AccountType string
	OrderID     string
	Total       string
	Lines       string
	From        string
	To          string
	MessageID   string
	Token       string
	Plan        string
	Price       string
	ExpiresAt   string
	ExpiredAt   string
	Resource    string
	Current     string
	Limit       string
}

var bodyTemplates = map[enums.EmailKind]string{
	enums.EmailKindWelcome: `<p>Hola {{.FirstName}},</p>
<p>Tu cuenta {{.AccountType}} en TEOmanager está lista. Ya puedes iniciar sesión y empezar a trabajar.</p>`,
	enums.EmailKindOrderConfirmation: `<p>Recibimos tu pedido <strong>{{.OrderID}}</strong>.</p>
<p>Artículos: {{.Lines}}. Total: ${{.Total}}.</p>
<p>Te avisaremos cuando el vendedor lo tome.</p>`,
	enums.EmailKindOrderStatusChanged: `<p>Tu pedido <strong>{{.OrderID}}</strong> cambió de estado: {{.From}} → {{.To}}.</p>`,
	enums.EmailKindOrderMessage:       `<p>Tienes un mensaje nuevo en el pedido <strong>{{.OrderID}}</strong>. Entra a TEOmanager para leerlo.</p>`,
	enums.EmailKindPasswordReset: `<p>Hola {{.FirstName}},</p>
<p>Usa este código para restablecer tu contraseña: <strong>{{.Token}}</strong></p>
<p>Si no lo pediste, ignora este correo.</p>`,
	enums.EmailKindLimitWarning: `<p>Tu plan <strong>{{.Plan}}</strong> permite {{.Limit}} {{.Resource}} y ya usas {{.Current}}.</p>
<p>Mejora tu plan si necesitas más espacio.</p>`,
	enums.EmailKindSubscriptionReceipt: `<p>Tu plan <strong>{{.Plan}}</strong> está activo por ${{.Price}}.</p>
<p>Vence el {{.ExpiresAt}}.</p>`,
	enums.EmailKindSubscriptionReminder: `<p>Tu plan <strong>{{.Plan}}</strong> vence el {{.ExpiresAt}}.</p>
<p>Renueva antes de esa fecha para no perder los límites de tu plan.</p>`,
	enums.EmailKindSubscriptionExpired: `<p>Tu plan <strong>{{.Plan}}</strong> venció el {{.ExpiredAt}}.</p>
<p>Renueva tu suscripción para recuperar los límites de tu plan.</p>`,
}

var defaultSubjects = map[enums.EmailKind]string{
	enums.EmailKindWelcome:              "Bienvenido a TEOmanager",
	enums.EmailKindOrderConfirmation:    "Confirmación de pedido",
	enums.EmailKindOrderStatusChanged:   "Tu pedido cambió de estado",
	enums.EmailKindOrderMessage:         "Mensaje nuevo en tu pedido",
	enums.EmailKindPasswordReset:        "Restablece tu contraseña",
	enums.EmailKindLimitWarning:         "Estás cerca del límite de tu plan",
	enums.EmailKindSubscriptionReceipt:  "Recibo de suscripción",
	enums.EmailKindSubscriptionReminder: "Tu suscripción vence pronto",
	enums.EmailKindSubscriptionExpired:  "Tu suscripción venció",
}

func NewRenderer() (*Renderer, error) {
	templates := make(map[enums.EmailKind]*htmltemplate.Template, len(bodyTemplates))
	for kind, body := range bodyTemplates {
		parsed, err := htmltemplate.New(kind.String()).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		templates[kind] = parsed
	}
	return &Renderer{templates: templates}, nil
}

// Render builds the deliverable message for an outbox row.
func (r *Renderer) Render(row models.EmailOutbox) (pkgemail.Message, error) {
	template, ok := r.templates[row.Kind]
	if !ok {
		return pkgemail.Message{}, fmt.Errorf("no template for email kind %q", row.Kind)
	}

	var raw map[string]any
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &raw); err != nil {
			return pkgemail.Message{}, fmt.Errorf("decode payload: %w", err)
		}
	}
	data := templateData{
		FirstName:   field(raw, "first_name"),
		AccountType: field(raw, "account_type"),
		OrderID:     field(raw, "order_id"),
		Total:       field(raw, "total"),
		Lines:       field(raw, "lines"),
		From:        field(raw, "from"),
		To:          field(raw, "to"),
		MessageID:   field(raw, "message_id"),
		Token:       field(raw, "token"),
		Plan:        field(raw, "plan"),
		Price:       field(raw, "price"),
		ExpiresAt:   field(raw, "expires_at"),
		ExpiredAt:   field(raw, "expired_at"),
		Resource:    field(raw, "resource"),
		Current:     field(raw, "current"),
		Limit:       field(raw, "limit"),
	}

	var buf bytes.Buffer
	if err := template.Execute(&buf, data); err != nil {
		return pkgemail.Message{}, fmt.Errorf("render %s body: %w", row.Kind, err)
	}

	subject := row.Subject
	if subject == "" {
		subject = defaultSubjects[row.Kind]
	}
	return pkgemail.Message{
		To:       row.Recipient,
		Subject:  subject,
		HTMLBody: buf.String(),
	}, nil
}

// field stringifies a payload value. Numbers arrive as float64 after the
// JSON round trip.
func field(raw map[string]any, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
