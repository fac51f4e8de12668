package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ravenlane/compo/internal/adapter/payments"
	"github.com/ravenlane/compo/internal/app"
	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/server/http/middleware"
	"github.com/ravenlane/compo/internal/test"
	"github.com/ravenlane/compo/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performJSON(t *testing.T, engine *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestAuthHandlerRegister(t *testing.T) {
	engine := gin.New()
	handler := NewAuthHandler(test.AuthFacadeStub{})
	engine.POST("/register", handler.Register)

	resp := performJSON(t, engine, http.MethodPost, "/register", map[string]string{"email": "a@b.c", "password": "pw"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Authorization"); got != "Bearer token" {
		t.Fatalf("expected auth header, got %q", got)
	}

	engine = gin.New()
	handler = NewAuthHandler(test.AuthFacadeStub{
		RegisterFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrAlreadyExists
		},
	})
	engine.POST("/register", handler.Register)
	resp = performJSON(t, engine, http.MethodPost, "/register", map[string]string{"email": "a@b.c", "password": "pw"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.Code)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	engine := gin.New()
	handler := NewAuthHandler(test.AuthFacadeStub{
		AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		},
	})
	engine.POST("/login", handler.Login)
	resp := performJSON(t, engine, http.MethodPost, "/login", map[string]string{"email": "a@b.c", "password": "bad"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestCompetitionHandlerList(t *testing.T) {
	engine := gin.New()
	handler := NewCompetitionHandler(test.CatalogFacadeStub{})
	engine.GET("/competitions", handler.List)

	resp := performJSON(t, engine, http.MethodGet, "/competitions", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var feed []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(feed) != 1 || feed[0]["title"] != "Win a thing" {
		t.Fatalf("unexpected feed: %v", feed)
	}
}

func TestCompetitionHandlerGet(t *testing.T) {
	engine := gin.New()
	handler := NewCompetitionHandler(test.CatalogFacadeStub{
		CompetitionFn: func(context.Context, int64) (*model.Competition, error) {
			return nil, domainErrors.ErrNotFound
		},
	})
	engine.GET("/competitions/:id", handler.Get)

	resp := performJSON(t, engine, http.MethodGet, "/competitions/99", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	resp = performJSON(t, engine, http.MethodGet, "/competitions/abc", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", resp.Code)
	}
}

func checkoutPayload() map[string]any {
	return map[string]any{
		"competition_id": 1,
		"quantity":       2,
		"provider":       "paypal",
		"billing":        map[string]string{"email": "a@b.c"},
	}
}

func TestCheckoutHandlerCheckout(t *testing.T) {
	engine := gin.New()
	handler := NewCheckoutHandler(test.CheckoutFacadeStub{})
	engine.POST("/checkout", handler.Checkout)

	resp := performJSON(t, engine, http.MethodPost, "/checkout", checkoutPayload())
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"sold out", domainErrors.ErrSoldOut, http.StatusConflict},
		{"closed", domainErrors.ErrCompetitionClosed, http.StatusConflict},
		{"bad quantity", domainErrors.ErrInvalidQuantity, http.StatusUnprocessableEntity},
		{"unknown provider", payments.ErrUnknownProvider, http.StatusUnprocessableEntity},
		{"unknown competition", domainErrors.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			handler := NewCheckoutHandler(test.CheckoutFacadeStub{
				CheckoutFn: func(context.Context, usecase.CheckoutInput) (*usecase.CheckoutResult, error) {
					return nil, tc.err
				},
			})
			engine.POST("/checkout", handler.Checkout)
			resp := performJSON(t, engine, http.MethodPost, "/checkout", checkoutPayload())
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestCheckoutHandlerConfirm(t *testing.T) {
	ref := uuid.New()
	order := &model.Order{ID: 1, PublicRef: ref, TicketNumbers: []int{3, 4}, Status: model.OrderStatusCompleted}

	engine := gin.New()
	handler := NewCheckoutHandler(test.CheckoutFacadeStub{
		ConfirmFn: func(context.Context, string) (*model.Order, *usecase.SettleResult, error) {
			return order, &usecase.SettleResult{TicketsIssued: 2}, nil
		},
	})
	engine.POST("/orders/:ref/confirm", handler.Confirm)

	resp := performJSON(t, engine, http.MethodPost, "/orders/"+ref.String()+"/confirm", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var confirmed map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if confirmed["status"] != string(model.OrderStatusCompleted) {
		t.Fatalf("unexpected status: %v", confirmed["status"])
	}
	if confirmed["already_settled"] != false {
		t.Fatalf("fresh settlement must not report already_settled, got %v", confirmed["already_settled"])
	}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"pending", app.ErrCapturePending, http.StatusAccepted},
		{"rejected", domainErrors.ErrProviderRejected, http.StatusPaymentRequired},
		{"sold out", domainErrors.ErrSoldOut, http.StatusConflict},
		{"unknown", domainErrors.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			handler := NewCheckoutHandler(test.CheckoutFacadeStub{
				ConfirmFn: func(context.Context, string) (*model.Order, *usecase.SettleResult, error) {
					if tc.err == domainErrors.ErrNotFound {
						return nil, nil, tc.err
					}
					return order, nil, tc.err
				},
			})
			engine.POST("/orders/:ref/confirm", handler.Confirm)
			resp := performJSON(t, engine, http.MethodPost, "/orders/"+ref.String()+"/confirm", nil)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestCheckoutHandlerConfirmReplay(t *testing.T) {
	ref := uuid.New()
	order := &model.Order{ID: 1, PublicRef: ref, TicketNumbers: []int{3, 4}, Status: model.OrderStatusCompleted}

	engine := gin.New()
	handler := NewCheckoutHandler(test.CheckoutFacadeStub{
		ConfirmFn: func(context.Context, string) (*model.Order, *usecase.SettleResult, error) {
			return order, &usecase.SettleResult{AlreadySettled: true}, nil
		},
	})
	engine.POST("/orders/:ref/confirm", handler.Confirm)

	resp := performJSON(t, engine, http.MethodPost, "/orders/"+ref.String()+"/confirm", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var confirmed map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if confirmed["already_settled"] != true {
		t.Fatalf("expected already_settled on replayed confirm, got %v", confirmed["already_settled"])
	}
	if confirmed["status"] != string(model.OrderStatusCompleted) {
		t.Fatalf("expected settled order status, got %v", confirmed["status"])
	}
}

func TestWebhookHandler(t *testing.T) {
	var gotProvider string
	engine := gin.New()
	handler := NewWebhookHandler(test.WebhookFacadeStub{
		HandleFn: func(_ context.Context, provider string, _ http.Header, _ []byte) error {
			gotProvider = provider
			return nil
		},
	})
	engine.POST("/webhooks/:provider", handler.Receive)

	resp := performJSON(t, engine, http.MethodPost, "/webhooks/paypal", map[string]string{"event": "x"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotProvider != "paypal" {
		t.Fatalf("expected provider path param, got %q", gotProvider)
	}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown provider", payments.ErrUnknownProvider, http.StatusNotFound},
		{"bad signature", app.ErrInvalidSignature, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			handler := NewWebhookHandler(test.WebhookFacadeStub{
				HandleFn: func(context.Context, string, http.Header, []byte) error { return tc.err },
			})
			engine.POST("/webhooks/:provider", handler.Receive)
			resp := performJSON(t, engine, http.MethodPost, "/webhooks/paypal", nil)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestAccountHandlerOrders(t *testing.T) {
	engine := gin.New()
	engine.Use(func(c *gin.Context) { c.Set(middleware.UserIDContextKey, int64(7)) })
	handler := NewAccountHandler(test.AccountFacadeStub{})
	engine.GET("/orders", handler.Orders)

	resp := performJSON(t, engine, http.MethodGet, "/orders", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	engine = gin.New()
	engine.Use(func(c *gin.Context) { c.Set(middleware.UserIDContextKey, int64(7)) })
	handler = NewAccountHandler(test.AccountFacadeStub{
		OrdersFn: func(context.Context, int64) ([]model.Order, error) { return nil, nil },
	})
	engine.GET("/orders", handler.Orders)
	resp = performJSON(t, engine, http.MethodGet, "/orders", nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty history, got %d", resp.Code)
	}
}

func TestAccountHandlerTickets(t *testing.T) {
	engine := gin.New()
	engine.Use(func(c *gin.Context) { c.Set(middleware.UserIDContextKey, int64(7)) })
	handler := NewAccountHandler(test.AccountFacadeStub{})
	engine.GET("/tickets", handler.Tickets)

	resp := performJSON(t, engine, http.MethodGet, "/tickets", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var tickets []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &tickets); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(tickets) != 1 || tickets[0]["number"] != float64(7) {
		t.Fatalf("unexpected tickets: %v", tickets)
	}
}

func TestAdminHandlerCreateCompetition(t *testing.T) {
	engine := gin.New()
	handler := NewAdminHandler(test.AdminFacadeStub{})
	engine.POST("/competitions", handler.CreateCompetition)

	resp := performJSON(t, engine, http.MethodPost, "/competitions", map[string]any{
		"title":              "New draw",
		"ticket_price_pence": 250,
		"currency":           "GBP",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp = performJSON(t, engine, http.MethodPost, "/competitions", map[string]any{"title": "no price"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", resp.Code)
	}

	resp = performJSON(t, engine, http.MethodPost, "/competitions", map[string]any{
		"title":              "bad limit",
		"ticket_price_pence": 250,
		"currency":           "GBP",
		"ticket_limit":       0,
	})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for zero limit, got %d", resp.Code)
	}
}

func TestOptionalUserID(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	if OptionalUserID(c) != nil {
		t.Fatal("expected nil for guest")
	}
	c.Set(middleware.UserIDContextKey, int64(5))
	id := OptionalUserID(c)
	if id == nil || *id != 5 {
		t.Fatalf("expected user id 5, got %v", id)
	}
}
