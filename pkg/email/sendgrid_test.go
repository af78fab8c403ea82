package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teomanager/teomanager-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*SendgridClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewSendgridClient(config.SendgridConfig{
		APIKey:      "sg-test-key",
		DefaultFrom: "no-reply@teomanager.app",
		Timeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.baseURL = server.URL
	return client, server
}

func TestSendgridSend(t *testing.T) {
	var captured sendgridRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sg-test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.Send(context.Background(), Message{
		To:       "buyer@user.test",
		Subject:  "Order confirmed",
		HTMLBody: "<p>Thanks!</p>",
		TextBody: "Thanks!",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if captured.Subject != "Order confirmed" {
		t.Fatalf("unexpected subject %q", captured.Subject)
	}
	if len(captured.Personalizations) != 1 || captured.Personalizations[0].To[0].Email != "buyer@user.test" {
		t.Fatalf("recipient not propagated: %+v", captured.Personalizations)
	}
	if captured.From.Email != "no-reply@teomanager.app" {
		t.Fatalf("unexpected from %q", captured.From.Email)
	}
	if len(captured.Content) != 2 {
		t.Fatalf("expected text and html content, got %d", len(captured.Content))
	}
}

func TestSendgridSendNon2xx(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad request"}]}`, http.StatusBadRequest)
	})

	err := client.Send(context.Background(), Message{To: "x@y.z", Subject: "s", TextBody: "t"})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestSendgridValidation(t *testing.T) {
	if _, err := NewSendgridClient(config.SendgridConfig{DefaultFrom: "a@b.c"}); err == nil {
		t.Fatal("expected error for missing api key")
	}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := client.Send(context.Background(), Message{Subject: "s", TextBody: "t"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
	if err := client.Send(context.Background(), Message{To: "x@y.z", Subject: "s"}); err == nil {
		t.Fatal("expected error for empty body")
	}
}
