package square

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ravenlane/compo/internal/adapter/payments"
)

const providerName = "square"

// Client implements payments.Gateway over the Square Payments API. Square
// tokenizes the card client-side, so CreatePayment charges the supplied
// card token directly and the payment id doubles as the provider order
// reference.
type Client struct {
	baseURL      *url.URL
	accessToken  string
	locationID   string
	signatureKey string
	// notificationURL is the webhook endpoint Square signs alongside the body.
	notificationURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

// New creates a Square gateway client with default timeout.
func New(baseURL, accessToken, locationID, signatureKey, notificationURL string, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse square url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("square url must be absolute")
	}
	return &Client{
		baseURL:         parsed,
		accessToken:     accessToken,
		locationID:      locationID,
		signatureKey:    signatureKey,
		notificationURL: notificationURL,
		logger:          logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Name identifies the provider in the gateway registry.
func (c *Client) Name() string {
	return providerName
}

type moneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type paymentPayload struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	AmountMoney moneyPayload `json:"amount_money"`
}

type paymentResponse struct {
	Payment paymentPayload `json:"payment"`
}

// CreatePayment charges the card token for the order amount. The
// idempotency key is the order reference, so a retried checkout cannot
// double-charge.
func (c *Client) CreatePayment(ctx context.Context, req payments.CreateRequest) (*payments.PaymentIntent, error) {
	body := map[string]any{
		"source_id":       req.CardToken,
		"idempotency_key": req.OrderRef,
		"reference_id":    req.OrderRef,
		"location_id":     c.locationID,
		"autocomplete":    true,
		"amount_money": moneyPayload{
			Amount:   req.AmountPence,
			Currency: req.Currency,
		},
	}

	var resp paymentResponse
	if err := c.do(ctx, http.MethodPost, "/v2/payments", body, &resp); err != nil {
		return nil, err
	}
	return &payments.PaymentIntent{ProviderRef: resp.Payment.ID}, nil
}

// CapturePayment reads the payment back; Square autocompletes the charge
// so this is a status check rather than a second capture call.
func (c *Client) CapturePayment(ctx context.Context, providerRef string) (*payments.CaptureResult, error) {
	var resp paymentResponse
	path := fmt.Sprintf("/v2/payments/%s", providerRef)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &payments.CaptureResult{
		Status:      mapPaymentStatus(resp.Payment.Status),
		CaptureID:   resp.Payment.ID,
		AmountPence: resp.Payment.AmountMoney.Amount,
	}, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature Square
// computes over the notification URL concatenated with the raw body.
func (c *Client) VerifyWebhookSignature(header http.Header, body []byte) bool {
	provided := header.Get("X-Square-Hmacsha256-Signature")
	if provided == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.signatureKey))
	mac.Write([]byte(c.notificationURL))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(provided))
}

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Payment paymentPayload `json:"payment"`
			Refund  struct {
				ID          string       `json:"id"`
				PaymentID   string       `json:"payment_id"`
				Status      string       `json:"status"`
				AmountMoney moneyPayload `json:"amount_money"`
			} `json:"refund"`
		} `json:"object"`
	} `json:"data"`
}

// ParseWebhook maps a Square webhook delivery to the provider-neutral
// event shape.
func (c *Client) ParseWebhook(body []byte) (*payments.WebhookEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse square webhook: %w", err)
	}

	switch payload.Type {
	case "payment.created", "payment.updated":
		payment := payload.Data.Object.Payment
		switch payment.Status {
		case "COMPLETED":
			return &payments.WebhookEvent{
				Kind:        payments.WebhookCaptureCompleted,
				ProviderRef: payment.ID,
				PaymentRef:  payment.ID,
				AmountPence: payment.AmountMoney.Amount,
			}, nil
		case "FAILED", "CANCELED":
			return &payments.WebhookEvent{
				Kind:        payments.WebhookCaptureDenied,
				ProviderRef: payment.ID,
				PaymentRef:  payment.ID,
			}, nil
		default:
			return &payments.WebhookEvent{Kind: payments.WebhookIgnored}, nil
		}
	case "refund.created", "refund.updated":
		refund := payload.Data.Object.Refund
		if refund.Status != "COMPLETED" {
			return &payments.WebhookEvent{Kind: payments.WebhookIgnored}, nil
		}
		return &payments.WebhookEvent{
			Kind:              payments.WebhookCaptureRefunded,
			PaymentRef:        refund.PaymentID,
			RefundRef:         refund.ID,
			RefundAmountPence: refund.AmountMoney.Amount,
		}, nil
	default:
		return &payments.WebhookEvent{Kind: payments.WebhookIgnored}, nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := *c.baseURL
	endpoint.Path = path

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("square request failed",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return fmt.Errorf("square error: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func mapPaymentStatus(status string) payments.CaptureStatus {
	switch status {
	case "COMPLETED":
		return payments.CaptureCompleted
	case "PENDING", "APPROVED":
		return payments.CapturePending
	default:
		return payments.CaptureFailed
	}
}
