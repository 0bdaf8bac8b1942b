package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	ocodes "go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	otrace "go.opentelemetry.io/otel/trace"

	"github.com/serverless/platform-client/pkg/accesskeys"
	"github.com/serverless/platform-client/pkg/metrics"
	"github.com/serverless/platform-client/pkg/telemetry"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	Endpoints  Endpoints
	AccessKeys accesskeys.Provider
	HTTP       Doer
}

func NewClient(endpoints Endpoints, keys accesskeys.Provider) *Client {
	return &Client{
		Endpoints:  endpoints,
		AccessKeys: keys,
		HTTP:       http.DefaultClient,
	}
}

// Bearer formats an access key for the Authorization header.
func Bearer(token string) string {
	return "bearer " + token
}

// PostJSON sends body to url and decodes the JSON response into out.
// Headers are applied verbatim; no headers are added implicitly.
func (c *Client) PostJSON(ctx context.Context, operation, url string, headers map[string]string, body []byte, out any) error {
	ctx, span := telemetry.Tracer().Start(ctx, operation, otrace.WithSpanKind(otrace.SpanKindClient))
	defer span.End()

	fail := func(err error) error {
		span.SetStatus(ocodes.Error, err.Error())
		span.RecordError(err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	span.SetAttributes(semconv.HTTPMethodKey.String(http.MethodPost), semconv.HTTPURLKey.String(url))
	log.Debugf("POST %s (%d bytes)", url, len(body))

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.BackendRequest(operation, 0, start)
		return fail(err)
	}
	defer resp.Body.Close()

	metrics.BackendRequest(operation, resp.StatusCode, start)
	span.SetAttributes(semconv.HTTPStatusCodeKey.Int(resp.StatusCode))
	log.Debugf("POST %s: %s", url, resp.Status)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fail(&ResponseError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       respBody,
		})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(fmt.Errorf("decode response from %s: %w", url, err))
	}

	return nil
}
