package scraper

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-resty/resty/v2"

	"MarketFusion/internal/httpclient"
)

// Source retrieves a financial-statement document.
type Source interface {
	Fetch(ctx context.Context, location string) (string, error)
	Name() string
}

// SourceFor picks a document source for location: local paths are read from
// disk, URLs are fetched over HTTP or rendered in a headless browser.
func SourceFor(location string, render bool, opts httpclient.Options) Source {
	if !isURL(location) {
		return &FileSource{}
	}
	if render {
		return &BrowserSource{Timeout: opts.Timeout, UserAgent: opts.UserAgent, Proxy: opts.Proxy}
	}
	return NewHTTPSource(opts)
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// HTTPSource fetches the raw page with a plain GET.
type HTTPSource struct {
	Client *resty.Client
}

// NewHTTPSource creates an HTTP document source.
func NewHTTPSource(opts httpclient.Options) *HTTPSource {
	return &HTTPSource{Client: httpclient.New(opts)}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context, location string) (string, error) {
	resp, err := s.Client.R().SetContext(ctx).Get(location)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", location, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch %s: status %d", location, resp.StatusCode())
	}
	return resp.String(), nil
}

// FileSource reads a saved page from disk.
type FileSource struct{}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Fetch(_ context.Context, location string) (string, error) {
	data, err := os.ReadFile(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

// BrowserSource renders the page in headless Chrome and returns the
// resulting DOM, for statement tables built client-side.
type BrowserSource struct {
	Timeout   time.Duration
	UserAgent string
	Proxy     string
}

func (s *BrowserSource) Name() string { return "chromedp" }

func (s *BrowserSource) Fetch(ctx context.Context, location string) (string, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", true))
	if s.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.UserAgent))
	}
	if s.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(s.Proxy))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = httpclient.DefaultTimeout
	}
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(location),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", location, err)
	}
	return html, nil
}
