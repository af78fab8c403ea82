package email

import (
	"strings"
	"testing"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
)

func TestRender_AllKindsHaveTemplates(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	kinds := []enums.EmailKind{
		enums.EmailKindWelcome,
		enums.EmailKindOrderConfirmation,
		enums.EmailKindOrderStatusChanged,
		enums.EmailKindOrderMessage,
		enums.EmailKindPasswordReset,
		enums.EmailKindLimitWarning,
		enums.EmailKindSubscriptionReceipt,
		enums.EmailKindSubscriptionReminder,
		enums.EmailKindSubscriptionExpired,
	}
	for _, kind := range kinds {
		msg, err := renderer.Render(models.EmailOutbox{
			Kind:      kind,
			Recipient: "someone@user.test",
			Payload:   []byte(`{}`),
		})
		if err != nil {
			t.Fatalf("render %s: %v", kind, err)
		}
		if msg.Subject == "" || msg.HTMLBody == "" {
			t.Fatalf("%s rendered empty subject or body", kind)
		}
	}
}

func TestRender_EscapesPayloadValues(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	msg, err := renderer.Render(models.EmailOutbox{
		Kind:      enums.EmailKindWelcome,
		Recipient: "someone@user.test",
		Payload:   []byte(`{"first_name":"<script>alert(1)</script>"}`),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(msg.HTMLBody, "<script>") {
		t.Fatalf("payload not escaped: %s", msg.HTMLBody)
	}
	if !strings.Contains(msg.HTMLBody, "&lt;script&gt;") {
		t.Fatalf("expected escaped value, got %s", msg.HTMLBody)
	}
}

func TestRender_PrefersStoredSubject(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	msg, err := renderer.Render(models.EmailOutbox{
		Kind:      enums.EmailKindPasswordReset,
		Recipient: "someone@user.test",
		Subject:   "Reset your TEOmanager password",
		Payload:   []byte(`{"first_name":"Teo","token":"tok_123"}`),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if msg.Subject != "Reset your TEOmanager password" {
		t.Fatalf("stored subject should win, got %q", msg.Subject)
	}
	if !strings.Contains(msg.HTMLBody, "tok_123") {
		t.Fatalf("token missing from body: %s", msg.HTMLBody)
	}
}

func TestRender_RejectsUnknownKind(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	if _, err := renderer.Render(models.EmailOutbox{Kind: "carrier_pigeon"}); err == nil {
		t.Fatal("unknown kind must fail")
	}
}
