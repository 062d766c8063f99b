package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/checkout"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/httpapi"
)

type fakeCheckout struct {
	fn func(ctx context.Context, req checkout.Request) (checkout.Result, error)
}

func (f *fakeCheckout) Checkout(ctx context.Context, req checkout.Request) (checkout.Result, error) {
	return f.fn(ctx, req)
}

func checkoutServer(fn func(ctx context.Context, req checkout.Request) (checkout.Result, error)) http.Handler {
	h := httpapi.NewHandler(nil, nil, nil, nil, nil, &fakeCheckout{fn: fn})
	return httpapi.NewRouter(h)
}

func TestCheckoutEndpoint(t *testing.T) {
	t.Run("missing user header", func(t *testing.T) {
		srv := checkoutServer(func(ctx context.Context, req checkout.Request) (checkout.Result, error) {
			t.Fatal("service must not be called")
			return checkout.Result{}, nil
		})

		r := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		srv := checkoutServer(func(ctx context.Context, req checkout.Request) (checkout.Result, error) {
			return checkout.Result{}, checkout.ErrEmptyCart
		})

		r := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
		r.Header.Set(httpapi.HeaderUserID, "u1")
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unavailable course", func(t *testing.T) {
		srv := checkoutServer(func(ctx context.Context, req checkout.Request) (checkout.Result, error) {
			return checkout.Result{}, &checkout.CourseUnavailableError{CourseID: "c9"}
		})

		body := bytes.NewBufferString(`{"items":[{"courseId":"c9","quantity":1}]}`)
		r := httptest.NewRequest(http.MethodPost, "/api/checkout", body)
		r.Header.Set(httpapi.HeaderUserID, "u1")
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("persistence failure", func(t *testing.T) {
		srv := checkoutServer(func(ctx context.Context, req checkout.Request) (checkout.Result, error) {
			return checkout.Result{}, errors.New("insert order: connection lost")
		})

		r := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
		r.Header.Set(httpapi.HeaderUserID, "u1")
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		var got checkout.Request
		srv := checkoutServer(func(ctx context.Context, req checkout.Request) (checkout.Result, error) {
			got = req
			return checkout.Result{OrderID: "o1", Total: decimal.RequireFromString("75.50")}, nil
		})

		body := bytes.NewBufferString(`{"paymentMethod":"card"}`)
		r := httptest.NewRequest(http.MethodPost, "/api/checkout", body)
		r.Header.Set(httpapi.HeaderUserID, "u1")
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		if got.UserID != "u1" || got.PaymentMethod != "card" || len(got.Items) != 0 {
			t.Fatalf("unexpected request passed to service: %+v", got)
		}

		var resp struct {
			OrderID string          `json:"orderId"`
			Total   decimal.Decimal `json:"total"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.OrderID != "o1" || !resp.Total.Equal(decimal.RequireFromString("75.50")) {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("buy now items forwarded", func(t *testing.T) {
		var got checkout.Request
		srv := checkoutServer(func(ctx context.Context, req checkout.Request) (checkout.Result, error) {
			got = req
			return checkout.Result{OrderID: "o2", Total: decimal.RequireFromString("19.99")}, nil
		})

		body := bytes.NewBufferString(`{"items":[{"courseId":"c1","quantity":2}]}`)
		r := httptest.NewRequest(http.MethodPost, "/api/checkout", body)
		r.Header.Set(httpapi.HeaderUserID, "u1")
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		if len(got.Items) != 1 || got.Items[0].CourseID != "c1" || got.Items[0].Quantity != 2 {
			t.Fatalf("override items not forwarded: %+v", got.Items)
		}
	})
}
