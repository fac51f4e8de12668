package payments

import (
	"context"
	"errors"
	"net/http"
)

// ErrUnknownProvider indicates no gateway is registered under the name.
var ErrUnknownProvider = errors.New("unknown payment provider")

// CaptureStatus is the provider-reported outcome of a capture attempt.
type CaptureStatus string

const (
	CaptureCompleted CaptureStatus = "COMPLETED"
	CapturePending   CaptureStatus = "PENDING"
	CaptureFailed    CaptureStatus = "FAILED"
)

// WebhookKind classifies provider webhook deliveries the fulfillment
// flow cares about; anything else maps to WebhookIgnored.
type WebhookKind string

const (
	WebhookCaptureCompleted WebhookKind = "capture-completed"
	WebhookCaptureDenied    WebhookKind = "capture-denied"
	WebhookCaptureRefunded  WebhookKind = "capture-refunded"
	WebhookIgnored          WebhookKind = "ignored"
)

// CreateRequest describes a payment to initiate at the provider.
type CreateRequest struct {
	AmountPence int64
	Currency    string
	OrderRef    string
	ReturnURL   string
	CancelURL   string
	// CardToken is used by tokenizing providers (Square); empty for
	// redirect-based providers (PayPal).
	CardToken string
}

// PaymentIntent is the provider-side handle for a created payment.
type PaymentIntent struct {
	ProviderRef string
	ApproveURL  string
}

// CaptureResult reports the outcome of capturing a payment.
type CaptureResult struct {
	Status      CaptureStatus
	CaptureID   string
	AmountPence int64
}

// WebhookEvent is the provider-neutral view of one webhook delivery.
// ProviderRef resolves to an Order, PaymentRef to a Payment.
type WebhookEvent struct {
	Kind              WebhookKind
	ProviderRef       string
	PaymentRef        string
	AmountPence       int64
	RefundRef         string
	RefundAmountPence int64
}

// Gateway abstracts one payment provider. The fulfillment engine depends
// only on this shape and never learns which provider it is talking to.
type Gateway interface {
	Name() string
	CreatePayment(ctx context.Context, req CreateRequest) (*PaymentIntent, error)
	CapturePayment(ctx context.Context, providerRef string) (*CaptureResult, error)
	VerifyWebhookSignature(header http.Header, body []byte) bool
	ParseWebhook(body []byte) (*WebhookEvent, error)
}

// Registry holds the configured gateways keyed by provider name.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry builds a registry from the given gateways.
func NewRegistry(gateways ...Gateway) *Registry {
	m := make(map[string]Gateway, len(gateways))
	for _, g := range gateways {
		m[g.Name()] = g
	}
	return &Registry{gateways: m}
}

// Get returns the gateway registered under name.
func (r *Registry) Get(name string) (Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return g, nil
}

// Names lists registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	return names
}
