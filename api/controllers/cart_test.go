package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/api/middleware"
	cartsvc "github.com/teomanager/teomanager-backend/internal/cart"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
)

type stubCart struct {
	dto *cartsvc.CartDTO
	err error

	lastAdd cartsvc.AddItemInput
}

func (s *stubCart) Add(ctx context.Context, accountID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.CartDTO, error) {
	s.lastAdd = input
	return s.dto, s.err
}

func (s *stubCart) Remove(ctx context.Context, accountID uuid.UUID, input cartsvc.RemoveItemInput) (*cartsvc.CartDTO, error) {
	return s.dto, s.err
}

func (s *stubCart) Get(ctx context.Context, accountID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.dto, s.err
}

func (s *stubCart) Clear(ctx context.Context, accountID uuid.UUID) error {
	return s.err
}

func (s *stubCart) Snapshot(ctx context.Context, accountID uuid.UUID) (*cartsvc.Cart, error) {
	panic("unimplemented")
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithPrincipal(req.Context(), uuid.New(), enums.AccountTypeConsumer)
	return req.WithContext(ctx)
}

func TestCartGetSuccess(t *testing.T) {
	dto := &cartsvc.CartDTO{Items: []cartsvc.ItemDTO{}, Total: decimal.Zero}
	handler := CartGet(&stubCart{dto: dto}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Items == nil {
		t.Fatal("expected items array in payload")
	}
}

func TestCartAddDecodesPayload(t *testing.T) {
	productID := uuid.New()
	stub := &stubCart{dto: &cartsvc.CartDTO{}}
	handler := CartAdd(stub, nil)

	body := `{"product_id":"` + productID.String() + `","quantity":2}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.lastAdd.ProductID == nil || *stub.lastAdd.ProductID != productID {
		t.Fatalf("expected product id forwarded, got %+v", stub.lastAdd)
	}
	if stub.lastAdd.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", stub.lastAdd.Quantity)
	}
}

func TestCartAddRejectsUnknownFields(t *testing.T) {
	handler := CartAdd(&stubCart{dto: &cartsvc.CartDTO{}}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", `{"product":"x"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddOutOfStock(t *testing.T) {
	stub := &stubCart{err: pkgerrors.New(pkgerrors.CodeStateConflict, "out of stock")}
	handler := CartAdd(stub, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":1}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
