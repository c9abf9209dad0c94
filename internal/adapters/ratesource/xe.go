package ratesource

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"golang.org/x/net/html"
)

const (
	// DefaultXEURL is the XE converter page for 1 USD in UAH.
	DefaultXEURL = "https://www.xe.com/currencyconverter/convert/?Amount=1&From=USD&To=UAH"
	// DefaultXEClass is the class list of the element holding the converted amount.
	DefaultXEClass = "result__BigRate-sc-1bsijpp-1 iGrAod"
)

// XEConverterPage scrapes the USD/UAH rate from the XE converter HTML page.
// The value is rounded to two decimals.
type XEConverterPage struct {
	url         string
	client      *http.Client
	classTokens []string
}

// NewXEConverterPage creates a fetcher. classList is a space separated list of
// classes that must all be present on the value element. Empty arguments select the defaults.
func NewXEConverterPage(url, classList string, client *http.Client) *XEConverterPage {
	if url == "" {
		url = DefaultXEURL
	}
	if strings.TrimSpace(classList) == "" {
		classList = DefaultXEClass
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout, DefaultMaxRedirects)
	}
	return &XEConverterPage{url: url, client: client, classTokens: strings.Fields(classList)}
}

var _ portssvc.RateFetcher = (*XEConverterPage)(nil)

func (x *XEConverterPage) SourceID() domain.RateSourceID {
	return domain.RateUSDUAH
}

func (x *XEConverterPage) Fetch(ctx context.Context) (float64, error) {
	body, status, err := getBody(ctx, x.client, domain.RateUSDUAH, x.url, "text/html")
	if err != nil {
		return 0, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return 0, fetchErr(domain.RateUSDUAH, status, "failed to parse html: %w", err)
	}

	node := findByClasses(doc, x.classTokens)
	if node == nil {
		return 0, fetchErr(domain.RateUSDUAH, status, "no element with class %q", strings.Join(x.classTokens, " "))
	}

	fields := strings.Fields(textContent(node))
	if len(fields) == 0 {
		return 0, fetchErr(domain.RateUSDUAH, status, "rate element is empty")
	}

	value, err := parseAmount(fields[0])
	if err != nil {
		return 0, fetchErr(domain.RateUSDUAH, status, "invalid rate %q: %w", fields[0], err)
	}
	if err := checkRate(domain.RateUSDUAH, status, value); err != nil {
		return 0, err
	}
	return math.Round(value*100) / 100, nil
}

// findByClasses returns the first element, in document order, whose class
// attribute contains every token.
func findByClasses(n *html.Node, tokens []string) *html.Node {
	if n.Type == html.ElementNode && hasClasses(n, tokens) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClasses(c, tokens); found != nil {
			return found
		}
	}
	return nil
}

func hasClasses(n *html.Node, tokens []string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		have := strings.Fields(attr.Val)
		for _, want := range tokens {
			found := false
			for _, h := range have {
				if h == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// parseAmount parses a number such as "41.2745" or "1,041.27".
func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}
