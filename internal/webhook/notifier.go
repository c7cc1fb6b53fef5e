// Package webhook forwards submitted quote forms to the external
// workflow-automation webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/config"
	"orcamento_backend/platform/logger"

	"github.com/go-resty/resty/v2"
)

// Notification outcomes reported to the metrics recorder.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

// MetricsRecorder counts webhook outcomes.
type MetricsRecorder interface {
	WebhookNotified(outcome string)
}

// Notifier posts JSON payloads to the configured webhook. It never retries.
type Notifier struct {
	client  *resty.Client
	url     string
	log     *logger.Logger
	metrics MetricsRecorder
}

// NewNotifier builds a Notifier. It is disabled when no URL is configured.
func NewNotifier(cfg config.WebhookConfig, log *logger.Logger) *Notifier {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json, text/plain, */*").
		SetTimeout(cfg.GetWebhookTimeout()).
		SetRetryCount(0)

	return &Notifier{
		client: client,
		url:    cfg.GetWebhookURL(),
		log:    log,
	}
}

// SetMetrics sets the outcome recorder.
func (n *Notifier) SetMetrics(metrics MetricsRecorder) {
	n.metrics = metrics
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.url != ""
}

// Notify posts payload and returns the decoded response body: nil for an
// empty body, the decoded value for JSON, the raw text otherwise.
// A non-2xx status is a notification error carrying the body.
func (n *Notifier) Notify(ctx context.Context, payload any) (any, error) {
	if !n.Enabled() {
		return nil, apperr.Unavailable("webhook is not configured").WithOp("Notify")
	}
	log := n.log.WithContext(ctx)

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		log.WebhookEvent(0, false, err)
		n.record(OutcomeFailed)
		return nil, apperr.Notification("webhook request failed", err).WithOp("Notify")
	}

	body := parseBody(resp.Body())
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		cause := errors.New(strings.TrimSpace(string(resp.Body())))
		log.WebhookEvent(resp.StatusCode(), false, cause)
		n.record(OutcomeFailed)
		return nil, apperr.Notification(fmt.Sprintf("webhook returned status %d", resp.StatusCode()), cause).
			WithOp("Notify").
			WithDetails(map[string]any{"status": resp.StatusCode(), "body": body})
	}

	log.WebhookEvent(resp.StatusCode(), true, nil)
	n.record(OutcomeDelivered)
	return body, nil
}

func (n *Notifier) record(outcome string) {
	if n.metrics != nil {
		n.metrics.WebhookNotified(outcome)
	}
}

func parseBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		var decoded any
		if err := json.Unmarshal(trimmed, &decoded); err == nil {
			return decoded
		}
	}
	return string(raw)
}
