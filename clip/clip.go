// Package clip fetches web pages and reduces them to a title and readable text.
package clip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/kbserver/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// MaxContentLength is the maximum number of characters kept from a page.
	MaxContentLength = 5000
)

// removedElements are never part of the clipped text.
const removedElements = "script, style, nav, footer, header"

func New(log *slog.Logger, timeout time.Duration) Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Fetcher{
		log:       log,
		client:    &http.Client{Timeout: timeout},
		UserAgent: DefaultUserAgent,
	}
}

type Fetcher struct {
	log       *slog.Logger
	client    *http.Client
	UserAgent string
}

// Fetch never fails. If the page can't be fetched or parsed, the result describes the error.
func (f Fetcher) Fetch(ctx context.Context, url string) models.ClipContent {
	content, err := f.fetch(ctx, url)
	if err != nil {
		f.log.Warn("failed to clip page", slog.String("url", url), slog.Any("error", err))
		return models.ClipContent{
			Title:   fmt.Sprintf("Error fetching %s", url),
			Content: fmt.Sprintf("Could not fetch content: %v", err),
		}
	}
	return content
}

func (f Fetcher) fetch(ctx context.Context, url string) (content models.ClipContent, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return content, err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return content, err
	}
	defer resp.Body.Close()
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return content, fmt.Errorf("failed to decode page: %w", err)
	}
	return Extract(body, url)
}

// Extract returns the title and main text of an HTML page. The url is used as the title if the
// page doesn't have one.
func Extract(r io.Reader, url string) (content models.ClipContent, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return content, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(removedElements).Remove()

	content.Title = url
	if title := doc.Find("title").First(); title.Length() > 0 {
		content.Title = title.Text()
	}

	main := doc.Selection
	for _, selector := range []string{"main", "article", "body"} {
		if s := doc.Find(selector).First(); s.Length() > 0 {
			main = s
			break
		}
	}
	content.Content = Truncate(collapseBlankLines(text(main)), MaxContentLength)
	return content, nil
}

// text joins the trimmed, non-empty text nodes of the selection with newlines.
func text(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

func collapseBlankLines(s string) string {
	return blankLines.ReplaceAllString(s, "\n\n")
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	runes := 0
	for i := range s {
		if runes == n {
			return s[:i]
		}
		runes++
	}
	return s
}
