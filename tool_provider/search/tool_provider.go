package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html"

	toolprovider "github.com/w-h-a/groomwise/tool_provider"
)

const (
	Name            = "duckduckgo_search"
	DefaultEndpoint = "https://html.duckduckgo.com/html/"
	NoResults       = "No good DuckDuckGo Search Result was found"
	userAgent       = "Mozilla/5.0 (compatible; GroomWise/1.0)"
)

type result struct {
	Title   string
	Link    string
	Snippet string
}

type searchToolProvider struct {
	options toolprovider.Options
	client  *http.Client
}

func (tp *searchToolProvider) Name() string { return Name }

func (tp *searchToolProvider) Description() string {
	return "A wrapper around DuckDuckGo Search. Useful for when you need to answer questions about current events or find products and prices. Input should be a search query."
}

func (tp *searchToolProvider) Run(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if len(query) == 0 {
		return "", fmt.Errorf("search query: %w", toolprovider.ErrEmptyInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tp.options.Endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	rsp, err := tp.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", rsp.StatusCode)
	}

	results, err := parseResults(rsp.Body, tp.options.MaxResults)
	if err != nil {
		return "", err
	}

	if len(results) == 0 {
		return NoResults, nil
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(r.Title)
		if len(r.Snippet) > 0 {
			sb.WriteString(": ")
			sb.WriteString(r.Snippet)
		}
		if len(r.Link) > 0 {
			sb.WriteString(" (")
			sb.WriteString(r.Link)
			sb.WriteString(")")
		}
	}

	return sb.String(), nil
}

// parseResults walks the DuckDuckGo HTML page collecting result titles,
// links and snippets. A snippet always follows its title.
func parseResults(r io.Reader, limit int) ([]result, error) {
	var results []result

	var (
		capturing string
		target    *string
		depth     int
		text      strings.Builder
	)

	tokenizer := html.NewTokenizer(r)
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return results, nil
			}
			return nil, fmt.Errorf("tokenizer error: %w", tokenizer.Err())

		case html.StartTagToken:
			tok := tokenizer.Token()
			if len(capturing) > 0 {
				if tok.Data == capturing {
					depth++
				}
				continue
			}

			class := attr(tok, "class")
			switch {
			case hasClass(class, "result__a"):
				if limit > 0 && len(results) == limit {
					return results, nil
				}
				results = append(results, result{Link: decodeLink(attr(tok, "href"))})
				target = &results[len(results)-1].Title
			case hasClass(class, "result__snippet") && len(results) > 0:
				target = &results[len(results)-1].Snippet
			default:
				continue
			}

			capturing = tok.Data
			depth = 0
			text.Reset()

		case html.EndTagToken:
			if len(capturing) == 0 {
				continue
			}
			name, _ := tokenizer.TagName()
			if string(name) != capturing {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			*target = strings.Join(strings.Fields(text.String()), " ")
			capturing = ""
			target = nil

		case html.TextToken:
			if len(capturing) > 0 {
				text.Write(bytes.TrimSpace(tokenizer.Text()))
				text.WriteString(" ")
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(class, want string) bool {
	for _, c := range strings.Fields(class) {
		if c == want {
			return true
		}
	}
	return false
}

// decodeLink unwraps the DuckDuckGo redirect (//duckduckgo.com/l/?uddg=...).
func decodeLink(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}

	if target := parsed.Query().Get("uddg"); len(target) > 0 {
		return target
	}

	return href
}

func NewToolProvider(opts ...toolprovider.Option) toolprovider.ToolProvider {
	options := toolprovider.NewOptions(opts...)

	if len(options.Endpoint) == 0 {
		options.Endpoint = DefaultEndpoint
	}

	if options.MaxResults == 0 {
		options.MaxResults = 5
	}

	if options.Timeout == 0 {
		options.Timeout = 30 * time.Second
	}

	return &searchToolProvider{
		options: options,
		client: &http.Client{
			Timeout:   options.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}
