// Package portal holds the county web-portal adapters and the aggregator
// that runs them.
package portal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/cookiejar"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("countysales/portal")

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

var (
	// ErrHTTPStatus marks a portal response outside the 2xx range.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrUnexpectedPage marks a page that lacks the structure an adapter relies on.
	ErrUnexpectedPage = errors.New("unexpected page content")
)

// Options configures a county adapter. Zero values fall back to the public
// portal address, a 30s per-request timeout and a desktop browser agent.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
}

func (o Options) withDefaults(baseURL string) Options {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// newSession returns a cookie-carrying client owned by a single adapter
// invocation.
func newSession(opts Options) (*resty.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetCookieJar(jar)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	return client, nil
}

func checkStatus(res *resty.Response) error {
	code := res.StatusCode()
	if code < 200 || code > 299 {
		return fmt.Errorf("%s %s: %w: %s", res.Request.Method, res.Request.URL, ErrHTTPStatus, res.Status())
	}
	return nil
}

func parseDocument(res *resty.Response) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func getDocument(ctx context.Context, client *resty.Client, path string) (*goquery.Document, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if err := checkStatus(res); err != nil {
		return nil, err
	}
	return parseDocument(res)
}

func postForm(ctx context.Context, client *resty.Client, path string, form map[string]string) error {
	res, err := client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return checkStatus(res)
}
