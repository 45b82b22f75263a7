package yahoo

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stocklens/stocklens/internal/models"
)

// Quote page scraping is the last-resort fundamentals source. The page embeds
// the same quoteSummary payload as escaped JSON inside a script tag, and
// renders headline figures through <fin-streamer> elements; both carry the
// raw numeric values we need when the JSON endpoints are unavailable.

var scrapeNumericKeys = []struct {
	pageKey string
	assign  func(*models.Fundamentals, *float64)
}{
	{"marketCap", func(f *models.Fundamentals, v *float64) { f.MarketCap = v }},
	{"trailingPE", func(f *models.Fundamentals, v *float64) { f.TrailingPE = v }},
	{"forwardPE", func(f *models.Fundamentals, v *float64) { f.ForwardPE = v }},
	{"trailingEps", func(f *models.Fundamentals, v *float64) { f.TrailingEPS = v }},
	{"forwardEps", func(f *models.Fundamentals, v *float64) { f.ForwardEPS = v }},
	{"sharesOutstanding", func(f *models.Fundamentals, v *float64) { f.SharesOutstanding = v }},
	{"dividendRate", func(f *models.Fundamentals, v *float64) { f.DividendRate = v }},
	{"dividendYield", func(f *models.Fundamentals, v *float64) { f.DividendYield = v }},
	{"beta", func(f *models.Fundamentals, v *float64) { f.Beta = v }},
	{"priceToBook", func(f *models.Fundamentals, v *float64) { f.PriceToBook = v }},
	{"priceToSalesTrailing12Months", func(f *models.Fundamentals, v *float64) { f.PriceToSales = v }},
	{"bookValue", func(f *models.Fundamentals, v *float64) { f.BookValue = v }},
	{"totalRevenue", func(f *models.Fundamentals, v *float64) { f.TotalRevenue = v }},
	{"netIncomeToCommon", func(f *models.Fundamentals, v *float64) { f.NetIncome = v }},
	{"earningsGrowth", func(f *models.Fundamentals, v *float64) { f.EarningsGrowth = v }},
}

// ScrapeQuotePage fetches the public quote page for symbol and extracts
// whatever fundamentals it can find. Missing fields stay nil; the error is
// non-nil only when no usable page could be fetched at all.
func (c *Client) ScrapeQuotePage(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("scrape quote page: %w", models.ErrNoData)
	}

	html, err := c.fetchQuotePage(ctx, symbol)
	if err != nil {
		return nil, err
	}

	f := &models.Fundamentals{}
	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))

	for _, key := range scrapeNumericKeys {
		val := extractEmbeddedNumeric(html, key.pageKey)
		if val == nil && docErr == nil {
			val = extractStreamerNumeric(doc, key.pageKey)
		}
		if val != nil {
			key.assign(f, val)
		}
	}

	if name := firstNonEmpty(extractEmbeddedText(html, "shortName"), extractEmbeddedText(html, "longName")); name != "" {
		f.ShortName = models.Text(name)
	}
	if sector := extractEmbeddedText(html, "sector"); sector != "" {
		f.Sector = models.Text(sector)
	}

	return f, nil
}

// fetchQuotePage downloads the quote page HTML, tolerating both transparent
// and explicit gzip encoding.
func (c *Client) fetchQuotePage(ctx context.Context, symbol string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	encoded := url.PathEscape(symbol)
	pageURL := fmt.Sprintf("%s/quote/%s/?p=%s", c.pageURL, encoded, encoded)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch quote page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    "quote page fetch failed",
			Endpoint:   "/quote/" + symbol,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read quote page: %w", err)
	}

	encoding := strings.ToLower(resp.Header.Get("Content-Encoding"))
	if encoding == "gzip" || bytes.HasPrefix(body, []byte{0x1f, 0x8b}) {
		if gz, err := gzip.NewReader(bytes.NewReader(body)); err == nil {
			if decoded, err := io.ReadAll(gz); err == nil {
				body = decoded
			}
			gz.Close()
		}
	}

	return string(body), nil
}

// extractEmbeddedNumeric pulls `\"key\":{\"raw\":123.4` out of the escaped
// JSON blob the page embeds in a script tag.
func extractEmbeddedNumeric(html, key string) *float64 {
	pattern := `\\"` + regexp.QuoteMeta(key) + `\\":\{\\"raw\\":(-?[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?)`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	m := re.FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	return ParseDisplayNumber(m[1])
}

// extractStreamerNumeric reads the data-value attribute of the fin-streamer
// element rendering the given field.
func extractStreamerNumeric(doc *goquery.Document, key string) *float64 {
	sel := doc.Find(fmt.Sprintf(`fin-streamer[data-field=%q]`, key)).First()
	raw, ok := sel.Attr("data-value")
	if !ok {
		return nil
	}
	return ParseDisplayNumber(raw)
}

func extractEmbeddedText(html, key string) string {
	pattern := `\\"` + regexp.QuoteMeta(key) + `\\":\\"([^\\"]+)\\"`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

var displayPlaceholders = map[string]bool{
	"N/A": true, "ND": true, "N/D": true, "-": true, "--": true,
}

// ParseDisplayNumber parses a human-formatted numeric string as rendered on
// quote pages: thousands separators, a trailing %, or a K/M/B/T magnitude
// suffix. Returns nil for placeholders and non-finite values.
func ParseDisplayNumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || displayPlaceholders[strings.ToUpper(s)] {
		return nil
	}

	if strings.HasSuffix(s, "%") {
		base := ParseDisplayNumber(strings.TrimSuffix(s, "%"))
		if base == nil {
			return nil
		}
		return models.Float(*base / 100.0)
	}

	mult := 1.0
	switch strings.ToUpper(s[len(s)-1:]) {
	case "K":
		mult, s = 1e3, s[:len(s)-1]
	case "M":
		mult, s = 1e6, s[:len(s)-1]
	case "B":
		mult, s = 1e9, s[:len(s)-1]
	case "T":
		mult, s = 1e12, s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v *= mult
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return models.Float(v)
}
