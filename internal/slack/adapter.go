// Package slack forwards published notifications to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// webhookKey is the field of the secret that holds the webhook URL.
const webhookKey = "webhook_url"

// SecretStore resolves a secret reference to its key/value content.
type SecretStore interface {
	GetSecret(ctx context.Context, ref string) (map[string]string, error)
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryConfig bounds the webhook retry loop.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig retries three times starting at 200ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// Adapter delivers messages to the webhook named by a secret.
type Adapter struct {
	secrets   SecretStore
	secretRef string
	client    HTTPDoer
	retry     RetryConfig
	log       zerolog.Logger
}

// NewAdapter returns an Adapter reading the webhook URL from secretRef.
func NewAdapter(secrets SecretStore, secretRef string, client HTTPDoer, retry RetryConfig, log zerolog.Logger) *Adapter {
	return &Adapter{
		secrets:   secrets,
		secretRef: secretRef,
		client:    client,
		retry:     retry,
		log:       log.With().Str("component", "slack").Logger(),
	}
}

// Deliver posts m to the webhook. It reports false without an error when no
// webhook is configured.
func (a *Adapter) Deliver(ctx context.Context, m Message) (bool, error) {
	url := a.webhookURL(ctx)
	if url == "" {
		a.log.Info().Str("subject", m.Subject).Msg("no slack webhook configured; message dropped")
		return false, nil
	}

	body, err := json.Marshal(BuildPayload(m))
	if err != nil {
		return false, fmt.Errorf("encode slack payload: %w", err)
	}
	if err := a.postWithRetry(ctx, url, body); err != nil {
		return false, err
	}
	a.log.Info().Str("subject", m.Subject).Str("color", Color(m)).Msg("slack message delivered")
	return true, nil
}

// webhookURL returns the configured webhook, or "" when the reference is
// unset or the secret cannot be read.
func (a *Adapter) webhookURL(ctx context.Context) string {
	if a.secretRef == "" {
		return ""
	}
	secret, err := a.secrets.GetSecret(ctx, a.secretRef)
	if err != nil {
		a.log.Warn().Err(err).Msg("slack webhook secret unavailable")
		return ""
	}
	return secret[webhookKey]
}

// statusError is a non-2xx webhook response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("slack webhook returned %d: %s", e.code, e.body)
}

// retryable reports whether err is a transport failure or a 429/5xx response.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return true
}

func (a *Adapter) postWithRetry(ctx context.Context, url string, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= a.retry.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = a.post(ctx, url, body)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == a.retry.MaxRetries {
			break
		}

		wait := a.backoff(attempt)
		a.log.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("backoff", wait).Msg("slack webhook failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("post slack webhook: %w", lastErr)
}

func (a *Adapter) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return &statusError{code: resp.StatusCode, body: string(snippet)}
}

// backoff doubles from InitialBackoff per attempt with ±20% jitter, capped at
// MaxBackoff.
func (a *Adapter) backoff(attempt int) time.Duration {
	base := float64(a.retry.InitialBackoff) * float64(int64(1)<<uint(attempt))
	jitter := rand.Float64()*0.4 - 0.2
	d := time.Duration(base * (1 + jitter))
	if a.retry.MaxBackoff > 0 && d > a.retry.MaxBackoff {
		d = a.retry.MaxBackoff
	}
	return d
}
