package httpclient

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Defaults for upstream requests.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetries      = 3
	DefaultRetryWait    = 500 * time.Millisecond
	DefaultRetryMaxWait = 8 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; MarketFusion/1.0)"
)

// Options configures a resty client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	Proxy     string
	UserAgent string
}

// New returns a resty client with a bounded timeout and exponential backoff
// on transport errors, 429 and 5xx responses.
func New(opts Options) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(DefaultRetryWait).
		SetRetryMaxWaitTime(DefaultRetryMaxWait).
		SetHeader("User-Agent", opts.UserAgent).
		AddRetryCondition(retryable)
	if opts.BaseURL != "" {
		client.SetBaseURL(opts.BaseURL)
	}
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	return client
}

func retryable(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
