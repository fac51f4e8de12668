package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ravenlane/compo/internal/adapter/payments"
)

const providerName = "paypal"

// Client implements payments.Gateway over the PayPal Orders v2 API.
type Client struct {
	baseURL      *url.URL
	clientID     string
	clientSecret string
	webhookID    string
	httpClient   *http.Client
	logger       *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates a PayPal gateway client with default timeout.
func New(baseURL, clientID, clientSecret, webhookID string, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse paypal url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("paypal url must be absolute")
	}
	return &Client{
		baseURL:      parsed,
		clientID:     clientID,
		clientSecret: clientSecret,
		webhookID:    webhookID,
		logger:       logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Name identifies the provider in the gateway registry.
func (c *Client) Name() string {
	return providerName
}

type amountPayload struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type createOrderResponse struct {
	ID    string `json:"id"`
	Links []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

// CreatePayment creates a PayPal order awaiting buyer approval.
func (c *Client) CreatePayment(ctx context.Context, req payments.CreateRequest) (*payments.PaymentIntent, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": req.OrderRef,
			"amount": amountPayload{
				CurrencyCode: req.Currency,
				Value:        formatMinorUnits(req.AmountPence),
			},
		}},
		"application_context": map[string]any{
			"return_url": req.ReturnURL,
			"cancel_url": req.CancelURL,
		},
	}

	var resp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &resp); err != nil {
		return nil, err
	}

	intent := &payments.PaymentIntent{ProviderRef: resp.ID}
	for _, link := range resp.Links {
		if link.Rel == "approve" {
			intent.ApproveURL = link.Href
		}
	}
	return intent, nil
}

type captureResponse struct {
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string        `json:"id"`
				Status string        `json:"status"`
				Amount amountPayload `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CapturePayment captures an approved PayPal order.
func (c *Client) CapturePayment(ctx context.Context, providerRef string) (*payments.CaptureResult, error) {
	var resp captureResponse
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", providerRef)
	if err := c.do(ctx, http.MethodPost, path, map[string]any{}, &resp); err != nil {
		return nil, err
	}

	result := &payments.CaptureResult{Status: mapCaptureStatus(resp.Status)}
	for _, unit := range resp.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			result.CaptureID = capture.ID
			result.AmountPence = parseMinorUnits(capture.Amount.Value)
		}
	}
	return result, nil
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// VerifyWebhookSignature asks PayPal to verify the delivery headers
// against the raw body. Any transport failure counts as not verified.
func (c *Client) VerifyWebhookSignature(header http.Header, body []byte) bool {
	payload := map[string]any{
		"auth_algo":         header.Get("Paypal-Auth-Algo"),
		"cert_url":          header.Get("Paypal-Cert-Url"),
		"transmission_id":   header.Get("Paypal-Transmission-Id"),
		"transmission_sig":  header.Get("Paypal-Transmission-Sig"),
		"transmission_time": header.Get("Paypal-Transmission-Time"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var resp verifyResponse
	if err := c.do(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", payload, &resp); err != nil {
		c.logger.Error("paypal webhook verification failed", slog.String("error", err.Error()))
		return false
	}
	return resp.VerificationStatus == "SUCCESS"
}

type webhookPayload struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID                string        `json:"id"`
		Amount            amountPayload `json:"amount"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	} `json:"resource"`
}

// ParseWebhook maps a PayPal webhook delivery to the provider-neutral
// event shape.
func (c *Client) ParseWebhook(body []byte) (*payments.WebhookEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse paypal webhook: %w", err)
	}

	switch payload.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		return &payments.WebhookEvent{
			Kind:        payments.WebhookCaptureCompleted,
			ProviderRef: payload.Resource.SupplementaryData.RelatedIDs.OrderID,
			PaymentRef:  payload.Resource.ID,
			AmountPence: parseMinorUnits(payload.Resource.Amount.Value),
		}, nil
	case "PAYMENT.CAPTURE.DENIED":
		return &payments.WebhookEvent{
			Kind:        payments.WebhookCaptureDenied,
			ProviderRef: payload.Resource.SupplementaryData.RelatedIDs.OrderID,
			PaymentRef:  payload.Resource.ID,
		}, nil
	case "PAYMENT.CAPTURE.REFUNDED":
		// The refund resource points back at its capture via the "up" link.
		event := &payments.WebhookEvent{
			Kind:              payments.WebhookCaptureRefunded,
			RefundRef:         payload.Resource.ID,
			RefundAmountPence: parseMinorUnits(payload.Resource.Amount.Value),
		}
		for _, link := range payload.Resource.Links {
			if link.Rel == "up" {
				if idx := strings.LastIndex(link.Href, "/captures/"); idx >= 0 {
					event.PaymentRef = link.Href[idx+len("/captures/"):]
				}
			}
		}
		return event, nil
	default:
		return &payments.WebhookEvent{Kind: payments.WebhookIgnored}, nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

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
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("paypal request failed",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return fmt.Errorf("paypal error: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	endpoint := *c.baseURL
	endpoint.Path = "/v1/oauth2/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token error: %s", resp.Status)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}

	c.accessToken = tok.AccessToken
	// Refresh a minute early to avoid using a token at its expiry edge.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

func mapCaptureStatus(status string) payments.CaptureStatus {
	switch status {
	case "COMPLETED":
		return payments.CaptureCompleted
	case "PENDING", "PAYER_ACTION_REQUIRED", "APPROVED", "CREATED", "SAVED":
		return payments.CapturePending
	default:
		return payments.CaptureFailed
	}
}
