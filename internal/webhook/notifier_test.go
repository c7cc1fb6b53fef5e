package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/logger"
)

type webhookConfig struct {
	url     string
	timeout time.Duration
}

func (c webhookConfig) GetWebhookURL() string            { return c.url }
func (c webhookConfig) GetWebhookTimeout() time.Duration { return c.timeout }
func (c webhookConfig) IsWebhookEnabled() bool           { return c.url != "" }

type outcomes struct {
	delivered atomic.Int32
	failed    atomic.Int32
}

func (o *outcomes) WebhookNotified(outcome string) {
	if outcome == OutcomeDelivered {
		o.delivered.Add(1)
		return
	}
	o.failed.Add(1)
}

func newNotifier(url string) (*Notifier, *outcomes) {
	n := NewNotifier(webhookConfig{url: url, timeout: 2 * time.Second}, logger.Discard())
	rec := &outcomes{}
	n.SetMetrics(rec)
	return n, rec
}

var form = map[string]any{
	"cliente":     "João",
	"produto":     "Site",
	"quantidade":  "1",
	"margemLucro": 25,
	"observacoes": "",
}

func TestNotifyPostsJSONAndDecodesResponse(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json, text/plain, */*" {
			t.Errorf("unexpected accept header %q", accept)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n, rec := newNotifier(srv.URL)
	resp, err := n.Notify(context.Background(), form)
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	decoded, ok := resp.(map[string]any)
	if !ok || decoded["ok"] != true {
		t.Fatalf("expected decoded JSON response, got %#v", resp)
	}
	if got["cliente"] != "João" || got["quantidade"] != "1" {
		t.Fatalf("unexpected payload %v", got)
	}
	if rec.delivered.Load() != 1 {
		t.Fatal("expected one delivered outcome")
	}
}

func TestNotifyBodyShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want any
	}{
		{"empty", "", nil},
		{"whitespace", "  \n", nil},
		{"text", "Workflow was started", "Workflow was started"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			n, _ := newNotifier(srv.URL)
			resp, err := n.Notify(context.Background(), form)
			if err != nil {
				t.Fatalf("Notify returned error: %v", err)
			}
			if resp != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, resp)
			}
		})
	}
}

func TestNotifyNon2xxIsNotificationError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("workflow crashed"))
	}))
	defer srv.Close()

	n, rec := newNotifier(srv.URL)
	_, err := n.Notify(context.Background(), form)
	if !apperr.Is(err, apperr.KindNotification) {
		t.Fatalf("expected notification error, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	details, _ := appErr.Details.(map[string]any)
	if details["status"] != http.StatusInternalServerError || details["body"] != "workflow crashed" {
		t.Fatalf("unexpected details %v", details)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one attempt, got %d", hits.Load())
	}
	if rec.failed.Load() != 1 {
		t.Fatal("expected one failed outcome")
	}
}

func TestNotifyUnreachableIsNotificationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	n, _ := newNotifier(url)
	if _, err := n.Notify(context.Background(), form); !apperr.Is(err, apperr.KindNotification) {
		t.Fatalf("expected notification error, got %v", err)
	}
}

func TestDisabledNotifier(t *testing.T) {
	n, _ := newNotifier("")
	if n.Enabled() {
		t.Fatal("expected notifier to be disabled without URL")
	}
	if _, err := n.Notify(context.Background(), form); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
