// Package content extracts the readable body of a web page so the LLM
// prompts work from actual page text instead of a bare URL.
package content

import (
	"bytes"
	"context"
	"log/slog"
	nurl "net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/andybalholm/cascadia"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/creativeos/creos/fetch"
)

// minBodyLength is the minimum readable-text length for readability output
// to be trusted. Shorter results usually mean the algorithm latched onto a
// cookie banner or navigation stub.
const minBodyLength = 50

// maxPromptRunes caps extracted text before it is embedded in an LLM prompt.
const maxPromptRunes = 4000

// fetchTimeout bounds the page fetch so enrichment endpoints never hang on a
// slow origin.
const fetchTimeout = 15 * time.Second

// Page holds the extracted content of a fetched page.
type Page struct {
	Title    string
	Text     string
	Markdown string
	Excerpt  string
}

// Extractor fetches pages and reduces them to their readable content.
type Extractor struct {
	client  *fetch.Client
	conv    *converter.Converter
	timeout time.Duration
}

// NewExtractor creates an Extractor backed by the shared HTTP client.
// Pass nil to use a default client.
func NewExtractor(client *fetch.Client) *Extractor {
	if client == nil {
		client = fetch.NewClient()
	}
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
	return &Extractor{client: client, conv: conv, timeout: fetchTimeout}
}

// Extract fetches pageURL and returns its readable content. selector is an
// optional CSS selector narrowing extraction to part of the page; pass ""
// to process the whole document.
func (e *Extractor) Extract(ctx context.Context, pageURL, selector string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.client.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, err
	}
	return e.FromHTML(string(raw), pageURL, selector)
}

// FromHTML extracts readable content from already-fetched HTML.
func (e *Extractor) FromHTML(rawHTML, pageURL, selector string) (*Page, error) {
	if selector != "" {
		filtered, err := filterBySelector(rawHTML, selector)
		if err != nil {
			return nil, err
		}
		rawHTML = filtered
	}

	article, ok := extractArticle(rawHTML, pageURL)
	page := &Page{
		Title:   article.Title,
		Text:    strings.TrimSpace(article.TextContent),
		Excerpt: article.Excerpt,
	}

	body := article.Content
	if !ok {
		body = rawHTML
	}
	md, err := e.conv.ConvertString(body, converter.WithDomain(domainOf(pageURL)))
	if err != nil {
		slog.Warn("markdown conversion failed", "url", pageURL, "error", err)
	} else {
		page.Markdown = strings.TrimSpace(md)
	}

	if page.Text == "" {
		page.Text = page.Markdown
	}
	return page, nil
}

// PromptText returns the page text truncated to the LLM prompt budget.
func (p *Page) PromptText() string {
	r := []rune(p.Text)
	if len(r) <= maxPromptRunes {
		return p.Text
	}
	return string(r[:maxPromptRunes])
}

// filterBySelector returns the concatenated outer HTML of all elements
// matching the selector. When nothing matches the original HTML is returned
// so downstream extraction still has input.
func filterBySelector(rawHTML, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return rawHTML, nil
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// extractArticle runs readability and reports whether its output is usable.
func extractArticle(rawHTML, pageURL string) (readability.Article, bool) {
	parsed, err := nurl.Parse(pageURL)
	if err != nil {
		return readability.Article{Content: rawHTML}, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		slog.Warn("readability extraction failed", "url", pageURL, "error", err)
		return readability.Article{Content: rawHTML}, false
	}
	if len(strings.TrimSpace(article.TextContent)) < minBodyLength {
		return readability.Article{Content: rawHTML}, false
	}
	return article, true
}

func domainOf(pageURL string) string {
	if u, err := nurl.Parse(pageURL); err == nil {
		return u.Scheme + "://" + u.Host
	}
	return ""
}
