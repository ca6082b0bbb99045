package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const defaultMaxRetries = 3

// Collector posts each sample to a trace ingest endpoint such as
// /api/v1/log-request/single. Server errors and transport failures are
// retried with exponential backoff; client errors are not. The caller's
// trace context is injected into every request.
type Collector struct {
	url        string
	apiKey     string
	client     *http.Client
	maxRetries uint64
	newBackOff func() backoff.BackOff
	propagator propagation.TextMapPropagator
}

func NewCollector(url, apiKey string) *Collector {
	return &Collector{
		url:        url,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

func (c *Collector) textMapPropagator() propagation.TextMapPropagator {
	if c.propagator != nil {
		return c.propagator
	}
	return otel.GetTextMapPropagator()
}

func (c *Collector) Write(ctx context.Context, rec Record) error {
	body, err := encodeSample(rec.Sample)
	if err != nil {
		return err
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", c.apiKey)
		}
		c.textMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("collector returned %d", resp.StatusCode)
		case resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("collector rejected sample: %d", resp.StatusCode))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("post sample from %s: %w", rec.Producer, err)
	}
	return nil
}

func (c *Collector) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
