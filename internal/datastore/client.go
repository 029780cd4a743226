// Package datastore talks to the alert index over HTTP. One Client is built at
// startup and shared read-only by every request.
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"soc-dashboard/internal/common/config"
	apperrors "soc-dashboard/internal/common/errors"
	commonhttp "soc-dashboard/internal/common/http"
	"soc-dashboard/internal/common/logger"
	"soc-dashboard/internal/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	OpSearch = "search"
	OpCount  = "count"

	// maxErrorBody caps how much of a failed response is kept in error details.
	maxErrorBody = 512
)

// response is the raw answer of one driver call.
type response struct {
	status int
	body   []byte
}

// driver performs the wire call for one datastore flavour.
type driver interface {
	search(ctx context.Context, index string, body io.Reader) (*response, error)
	count(ctx context.Context, index string, body io.Reader) (*response, error)
	ping(ctx context.Context) error
	name() string
}

// Client issues search and count requests against a fixed index pattern.
type Client struct {
	driver  driver
	index   string
	timeout time.Duration
	logger  logger.Logger
}

// New builds a Client for cfg.Driver. TLS trust follows cfg; verification is
// only disabled when tls_skip_verify is set.
func New(cfg config.DatastoreConfig, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	timeout := config.GetDuration(cfg.RequestTimeout)
	transport, err := commonhttp.NewTransport(timeout, commonhttp.TLSOptions{
		SkipVerify: cfg.TLSSkipVerify,
		CACertFile: cfg.CACertFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build datastore transport: %w", err)
	}

	if cfg.TLSSkipVerify {
		log.Warn("datastore TLS certificate verification is disabled", map[string]interface{}{
			"url": cfg.URL,
		})
	}

	var d driver
	switch cfg.Driver {
	case config.DriverElasticsearch:
		d, err = newElasticsearchDriver(cfg, transport)
	case config.DriverOpenSearch, "":
		d, err = newOpenSearchDriver(cfg, transport)
	default:
		return nil, fmt.Errorf("unsupported datastore driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return newClient(d, cfg.IndexPattern, timeout, log), nil
}

func newClient(d driver, index string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		driver:  d,
		index:   index,
		timeout: timeout,
		logger:  log.With(map[string]interface{}{"driver": d.name(), "index": index}),
	}
}

// Index returns the index pattern every request targets.
func (c *Client) Index() string {
	return c.index
}

// Search POSTs body to {index}/_search and returns the raw JSON answer.
func (c *Client) Search(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	return c.do(ctx, OpSearch, body, c.driver.search)
}

// Count POSTs body to {index}/_count. A nil body counts every document.
func (c *Client) Count(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	return c.do(ctx, OpCount, body, c.driver.count)
}

// Ping checks that the datastore answers at all.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.driver.ping(ctx); err != nil {
		return apperrors.NewTransportError("ping", err)
	}
	return nil
}

func (c *Client) do(
	ctx context.Context,
	op string,
	body map[string]interface{},
	call func(context.Context, string, io.Reader) (*response, error),
) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.NewQueryEncodingError(op, err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, span := otel.Tracer("soc-dashboard/datastore").Start(ctx, "datastore."+op)
	span.SetAttributes(
		attribute.String("db.system", c.driver.name()),
		attribute.String("db.operation", op),
		attribute.String("db.index", c.index),
	)
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := call(ctx, c.index, reader)
	duration := time.Since(start)
	metrics.DatastoreQueryDuration.WithLabelValues(op).Observe(duration.Seconds())

	if err == nil && (res.status < 200 || res.status > 299) {
		err = apperrors.NewStatusError(op, res.status, truncate(res.body))
	} else if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		err = apperrors.NewTransportError(op, err)
	}

	if err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.DatastoreQueriesTotal.WithLabelValues(op, apperrors.GetErrorCategory(stdErr.Code)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, stdErr.Message)
		c.logger.Error("datastore request failed", map[string]interface{}{
			"operation":  op,
			"errorCode":  string(stdErr.Code),
			"durationMs": duration.Milliseconds(),
			"error":      err,
		})
		return nil, err
	}

	metrics.DatastoreQueriesTotal.WithLabelValues(op, "ok").Inc()
	c.logger.Debug("datastore request completed", map[string]interface{}{
		"operation":  op,
		"status":     res.status,
		"durationMs": duration.Milliseconds(),
	})

	return res.body, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}
