package fetcher

import (
	"bytes"
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ICTylor/json-to-relational/internal/model"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	// MaxAttempts is the total number of attempts. Only transport errors and
	// transient statuses are retried. Default: 1.
	MaxAttempts int
	// RetryWait is the base delay between attempts. Default: 500ms.
	RetryWait time.Duration
}

// HTTPFetcher implements Source with a single GET to a fixed endpoint.
type HTTPFetcher struct {
	client *resty.Client
	opts   HTTPOptions
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "json-to-relational/1.0"
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxAttempts-1).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(10*opts.RetryWait).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && isTransientStatus(r.StatusCode()))
		}).
		AddRetryHook(func(r *resty.Response, err error) {
			fields := []zap.Field{zap.String("url", opts.URL)}
			if r != nil && r.Request != nil {
				fields = append(fields, zap.Int("attempt", r.Request.Attempt))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			} else if r != nil {
				fields = append(fields, zap.Int("status", r.StatusCode()))
			}
			zap.L().Warn("fetch failed, retrying", fields...)
		})

	return &HTTPFetcher{client: client, opts: opts}
}

// Fetch downloads the endpoint and parses it as a JSON array of objects.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]model.RawObject, error) {
	resp, err := f.client.R().SetContext(ctx).Get(f.opts.URL)
	if err != nil {
		return nil, &FetchError{URL: f.opts.URL, Err: eris.Wrap(err, "request failed")}
	}
	if !resp.IsSuccess() {
		return nil, &FetchError{
			URL:        f.opts.URL,
			StatusCode: resp.StatusCode(),
			Err:        eris.Errorf("unexpected status %s", resp.Status()),
		}
	}

	objects, err := DecodeArray[model.RawObject](bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &ParseError{URL: f.opts.URL, Err: err}
	}
	for i, obj := range objects {
		if obj == nil {
			return nil, &ParseError{URL: f.opts.URL, Err: eris.Errorf("json: element %d is null", i)}
		}
	}

	zap.L().Info("finished data extraction",
		zap.String("url", f.opts.URL),
		zap.Int("records", len(objects)),
		zap.Duration("elapsed", resp.Time()),
	)
	return objects, nil
}
