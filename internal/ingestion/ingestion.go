// Package ingestion pulls a job description out of a posting URL so it can
// seed the pipeline's shared job description field. It fetches the page over
// plain HTTP and extracts the posting text; pages that render their content
// with JavaScript fall back to a headless browser.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout bounds the plain HTTP fetch.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the client to job boards.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeTailor/1.0)"

// MinContentLength is the extracted-text length below which the page is
// assumed to be a JavaScript-rendered SPA and the browser fallback kicks in.
const MinContentLength = 500

// Error represents a failure to ingest a job posting URL.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ingesting %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("ingesting %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures job description ingestion.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// UseBrowser enables the headless browser fallback for pages whose
	// extracted text is shorter than MinContentLength. Requires a local
	// Chrome or Chromium.
	UseBrowser bool
	// BrowserTimeout bounds the headless render; defaults to Timeout.
	BrowserTimeout time.Duration
	Verbose        bool
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// jobPostingSelectors are tried in order against the fetched page; the first
// match is taken as the posting body.
var jobPostingSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// JobDescriptionFromURL fetches the posting page and returns its description
// text. When the plain fetch yields too little text and the browser fallback
// is enabled, the page is re-rendered headlessly before extraction.
func JobDescriptionFromURL(ctx context.Context, urlStr string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	html, err := fetchHTML(ctx, urlStr, opts)
	if err != nil {
		return "", err
	}

	text, err := extractPostingText(html)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "extracting posting text", Cause: err}
	}

	if len(strings.TrimSpace(text)) < MinContentLength && opts.UseBrowser {
		timeout := opts.BrowserTimeout
		if timeout == 0 {
			timeout = opts.Timeout
		}
		rendered, err := renderWithBrowser(ctx, urlStr, timeout, opts.Verbose)
		if err != nil {
			return "", &Error{URL: urlStr, Message: "browser rendering", Cause: err}
		}
		text, err = extractPostingText(rendered)
		if err != nil {
			return "", &Error{URL: urlStr, Message: "extracting rendered text", Cause: err}
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: urlStr, Message: "no readable posting text found"}
	}
	return text, nil
}

func fetchHTML(ctx context.Context, urlStr string, opts *Options) (string, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "creating request", Cause: err}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "reading response body", Cause: err}
	}
	return string(body), nil
}

// extractPostingText strips boilerplate and returns the text of the first
// matching posting container, falling back to the page body.
func extractPostingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .ads, .sidebar, .cookie-banner, .popup").Remove()

	content := doc.Find("body")
	for _, selector := range jobPostingSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}

	lines := strings.Split(content.Text(), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n"), nil
}
