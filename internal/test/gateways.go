package test

import (
	"context"
	"net/http"

	"github.com/ravenlane/compo/internal/adapter/notify"
	"github.com/ravenlane/compo/internal/adapter/payments"
)

// GatewayStub implements payments.Gateway with overridable behaviour.
type GatewayStub struct {
	NameVal   string
	CreateFn  func(context.Context, payments.CreateRequest) (*payments.PaymentIntent, error)
	CaptureFn func(context.Context, string) (*payments.CaptureResult, error)
	VerifyFn  func(http.Header, []byte) bool
	ParseFn   func([]byte) (*payments.WebhookEvent, error)
}

func (s GatewayStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

func (s GatewayStub) CreatePayment(ctx context.Context, req payments.CreateRequest) (*payments.PaymentIntent, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &payments.PaymentIntent{ProviderRef: "prov-" + req.OrderRef, ApproveURL: "https://pay.example/approve"}, nil
}

func (s GatewayStub) CapturePayment(ctx context.Context, providerRef string) (*payments.CaptureResult, error) {
	if s.CaptureFn != nil {
		return s.CaptureFn(ctx, providerRef)
	}
	return &payments.CaptureResult{Status: payments.CaptureCompleted, CaptureID: "cap-1"}, nil
}

func (s GatewayStub) VerifyWebhookSignature(header http.Header, body []byte) bool {
	if s.VerifyFn != nil {
		return s.VerifyFn(header, body)
	}
	return true
}

func (s GatewayStub) ParseWebhook(body []byte) (*payments.WebhookEvent, error) {
	if s.ParseFn != nil {
		return s.ParseFn(body)
	}
	return &payments.WebhookEvent{Kind: payments.WebhookIgnored}, nil
}

// NotifierStub records purchase notices.
type NotifierStub struct {
	NotifyFn func(context.Context, notify.PurchaseNotice) error
	Notices  []notify.PurchaseNotice
	Err      error
}

func (s *NotifierStub) PurchaseCompleted(ctx context.Context, notice notify.PurchaseNotice) error {
	if s.NotifyFn != nil {
		return s.NotifyFn(ctx, notice)
	}
	if s.Err != nil {
		return s.Err
	}
	s.Notices = append(s.Notices, notice)
	return nil
}

var (
	_ payments.Gateway = GatewayStub{}
	_ notify.Notifier  = (*NotifierStub)(nil)
)
