package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPNotifier(t *testing.T) {
	if _, err := NewHTTPNotifier("://bad", discardLogger()); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := NewHTTPNotifier("relative/path", discardLogger()); err == nil {
		t.Fatal("expected error for non-absolute url")
	}
	if _, err := NewHTTPNotifier("http://mailer.local", discardLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPNotifierPurchaseCompleted(t *testing.T) {
	var received PurchaseNotice
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/mail/purchase-completed" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier, err := NewHTTPNotifier(server.URL, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notice := PurchaseNotice{
		Email:            "buyer@example.com",
		OrderRef:         "ref-1",
		CompetitionTitle: "Win a Car",
		TicketNumbers:    []int{4, 5},
		AmountPence:      500,
		Currency:         "GBP",
	}
	if err := notifier.PurchaseCompleted(context.Background(), notice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.Email != notice.Email || received.OrderRef != notice.OrderRef || len(received.TicketNumbers) != 2 {
		t.Fatalf("unexpected notice delivered: %+v", received)
	}
}

func TestHTTPNotifierRelayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "relay down", http.StatusBadGateway)
	}))
	defer server.Close()

	notifier, err := NewHTTPNotifier(server.URL, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := notifier.PurchaseCompleted(context.Background(), PurchaseNotice{OrderRef: "ref-1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNoopNotifier(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewNoopNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := notifier.PurchaseCompleted(context.Background(), PurchaseNotice{OrderRef: "ref-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("ref-1")) {
		t.Fatalf("expected order ref logged, got %s", buf.String())
	}
}
