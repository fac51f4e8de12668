package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// PurchaseNotice carries everything the mail template needs.
type PurchaseNotice struct {
	Email            string `json:"email"`
	OrderRef         string `json:"order_ref"`
	CompetitionTitle string `json:"competition_title"`
	TicketNumbers    []int  `json:"ticket_numbers"`
	AmountPence      int64  `json:"amount_pence"`
	Currency         string `json:"currency"`
}

// Notifier dispatches customer notifications. Callers treat failures as
// best-effort: settlement never depends on delivery.
type Notifier interface {
	PurchaseCompleted(ctx context.Context, notice PurchaseNotice) error
}

// HTTPNotifier posts notices to the mail relay service.
type HTTPNotifier struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPNotifier creates a relay-backed notifier with default timeout.
func NewHTTPNotifier(baseURL string, logger *slog.Logger) (*HTTPNotifier, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse mailer url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("mailer url must be absolute")
	}
	return &HTTPNotifier{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// PurchaseCompleted sends the purchase confirmation mail request.
func (n *HTTPNotifier) PurchaseCompleted(ctx context.Context, notice PurchaseNotice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return err
	}

	endpoint := *n.baseURL
	endpoint.Path = "/v1/mail/purchase-completed"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		n.logger.Error("mailer request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return fmt.Errorf("mailer error: %s", resp.Status)
	}
	return nil
}

// NoopNotifier is used when no mail relay is configured.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier constructs a notifier that only logs.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// PurchaseCompleted logs the notice and drops it.
func (n *NoopNotifier) PurchaseCompleted(_ context.Context, notice PurchaseNotice) error {
	n.logger.Info("purchase notification skipped, mailer not configured",
		slog.String("order_ref", notice.OrderRef),
	)
	return nil
}
