// Package yahoo provides a client for the Yahoo Finance public endpoints
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/stocklens/stocklens/internal/common"
	"github.com/stocklens/stocklens/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultPageURL   = "https://finance.yahoo.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second

	userAgent = "Mozilla/5.0"
)

// flexFloat64 handles JSON values that may be a number, a string, or a
// {"raw": n, "fmt": "..."} wrapper as returned by quoteSummary modules.
type flexFloat64 struct {
	value *float64
}

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.value = &num
		return nil
	}

	var wrapper struct {
		Raw *float64 `json:"raw"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Raw != nil {
		f.value = wrapper.Raw
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
			f.value = &v
		}
		return nil
	}

	// Unparseable shapes degrade to absent rather than failing the payload
	return nil
}

// Ptr returns the parsed value, or nil when absent.
func (f flexFloat64) Ptr() *float64 { return f.value }

// Client implements the YahooClient interface
type Client struct {
	baseURL    string
	pageURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithPageURL sets the quote page base URL used for HTML scraping
func WithPageURL(pageURL string) ClientOption {
	return func(c *Client) {
		c.pageURL = strings.TrimRight(pageURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		pageURL: DefaultPageURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request and decodes the JSON response
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("url", c.baseURL+path).Msg("yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string       `json:"symbol"`
				ShortName           string       `json:"shortName"`
				RegularMarketPrice  *flexFloat64 `json:"regularMarketPrice"`
				RegularMarketVolume *flexFloat64 `json:"regularMarketVolume"`
				FiftyTwoWeekLow     *flexFloat64 `json:"fiftyTwoWeekLow"`
				FiftyTwoWeekHigh    *flexFloat64 `json:"fiftyTwoWeekHigh"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetChart retrieves OHLCV history for a symbol over rng at interval.
// Returns models.ErrNoData when the endpoint answers without usable rows.
func (c *Client) GetChart(ctx context.Context, symbol, rng, interval string) (*models.ChartData, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", interval)
	params.Set("includePrePost", "false")
	params.Set("events", "div,splits")

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	var payload chartResponse
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %w", symbol, payload.Chart.Error.Description, models.ErrNoData)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: empty result: %w", symbol, models.ErrNoData)
	}

	r0 := payload.Chart.Result[0]
	if len(r0.Timestamp) == 0 || len(r0.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: no rows: %w", symbol, models.ErrNoData)
	}

	q0 := r0.Indicators.Quote[0]
	chart := &models.ChartData{
		Timestamps: r0.Timestamp,
		Open:       q0.Open,
		High:       q0.High,
		Low:        q0.Low,
		Close:      q0.Close,
		Volume:     q0.Volume,
		Meta: models.ChartMeta{
			Symbol:    r0.Meta.Symbol,
			ShortName: r0.Meta.ShortName,
		},
	}
	if r0.Meta.RegularMarketPrice != nil {
		chart.Meta.RegularMarketPrice = r0.Meta.RegularMarketPrice.Ptr()
	}
	if r0.Meta.RegularMarketVolume != nil {
		chart.Meta.RegularMarketVolume = r0.Meta.RegularMarketVolume.Ptr()
	}
	if r0.Meta.FiftyTwoWeekLow != nil {
		chart.Meta.FiftyTwoWeekLow = r0.Meta.FiftyTwoWeekLow.Ptr()
	}
	if r0.Meta.FiftyTwoWeekHigh != nil {
		chart.Meta.FiftyTwoWeekHigh = r0.Meta.FiftyTwoWeekHigh.Ptr()
	}

	return chart, nil
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			ShortName                    string      `json:"shortName"`
			LongName                     string      `json:"longName"`
			Sector                       string      `json:"sector"`
			Industry                     string      `json:"industry"`
			MarketCap                    flexFloat64 `json:"marketCap"`
			TrailingPE                   flexFloat64 `json:"trailingPE"`
			ForwardPE                    flexFloat64 `json:"forwardPE"`
			EPSTrailingTwelveMonths      flexFloat64 `json:"epsTrailingTwelveMonths"`
			EPSForward                   flexFloat64 `json:"epsForward"`
			SharesOutstanding            flexFloat64 `json:"sharesOutstanding"`
			DividendRate                 flexFloat64 `json:"dividendRate"`
			DividendYield                flexFloat64 `json:"dividendYield"`
			Beta                         flexFloat64 `json:"beta"`
			PriceToBook                  flexFloat64 `json:"priceToBook"`
			PriceToSalesTrailing12Months flexFloat64 `json:"priceToSalesTrailing12Months"`
			BookValue                    flexFloat64 `json:"bookValue"`
			TotalRevenue                 flexFloat64 `json:"totalRevenue"`
			TrailingAnnualDividendRate   flexFloat64 `json:"trailingAnnualDividendRate"`
			TrailingAnnualDividendYield  flexFloat64 `json:"trailingAnnualDividendYield"`
			AverageDailyVolume3Month     flexFloat64 `json:"averageDailyVolume3Month"`
			RegularMarketVolume          flexFloat64 `json:"regularMarketVolume"`
			FiftyTwoWeekLow              flexFloat64 `json:"fiftyTwoWeekLow"`
			FiftyTwoWeekHigh             flexFloat64 `json:"fiftyTwoWeekHigh"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// GetQuote retrieves fundamentals from the v7 quote endpoint.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var payload quoteResponse
	if err := c.get(ctx, "/v7/finance/quote", params, &payload); err != nil {
		return nil, err
	}

	results := payload.QuoteResponse.Result
	if len(results) == 0 {
		return nil, fmt.Errorf("yahoo quote %s: empty result: %w", symbol, models.ErrNoData)
	}

	q0 := results[0]
	f := &models.Fundamentals{
		MarketCap:         q0.MarketCap.Ptr(),
		TrailingPE:        q0.TrailingPE.Ptr(),
		ForwardPE:         q0.ForwardPE.Ptr(),
		TrailingEPS:       q0.EPSTrailingTwelveMonths.Ptr(),
		ForwardEPS:        q0.EPSForward.Ptr(),
		SharesOutstanding: q0.SharesOutstanding.Ptr(),
		DividendRate:      q0.DividendRate.Ptr(),
		DividendYield:     q0.DividendYield.Ptr(),
		Beta:              q0.Beta.Ptr(),
		PriceToBook:       q0.PriceToBook.Ptr(),
		PriceToSales:      q0.PriceToSalesTrailing12Months.Ptr(),
		BookValue:         q0.BookValue.Ptr(),
		TotalRevenue:      q0.TotalRevenue.Ptr(),
		AverageVolume:     q0.AverageDailyVolume3Month.Ptr(),
		Volume:            q0.RegularMarketVolume.Ptr(),
		FiftyTwoWeekLow:   q0.FiftyTwoWeekLow.Ptr(),
		FiftyTwoWeekHigh:  q0.FiftyTwoWeekHigh.Ptr(),
	}
	if f.DividendRate == nil {
		f.DividendRate = q0.TrailingAnnualDividendRate.Ptr()
	}
	if f.DividendYield == nil {
		f.DividendYield = q0.TrailingAnnualDividendYield.Ptr()
	}
	if name := firstNonEmpty(q0.ShortName, q0.LongName); name != "" {
		f.ShortName = models.Text(name)
	}
	if sector := firstNonEmpty(q0.Sector, q0.Industry); sector != "" {
		f.Sector = models.Text(sector)
	}

	return f, nil
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				MarketCap                    flexFloat64 `json:"marketCap"`
				TrailingPE                   flexFloat64 `json:"trailingPE"`
				ForwardPE                    flexFloat64 `json:"forwardPE"`
				DividendRate                 flexFloat64 `json:"dividendRate"`
				DividendYield                flexFloat64 `json:"dividendYield"`
				TrailingAnnualDividendRate   flexFloat64 `json:"trailingAnnualDividendRate"`
				TrailingAnnualDividendYield  flexFloat64 `json:"trailingAnnualDividendYield"`
				Beta                         flexFloat64 `json:"beta"`
				PriceToSalesTrailing12Months flexFloat64 `json:"priceToSalesTrailing12Months"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				MarketCap         flexFloat64 `json:"marketCap"`
				TrailingEps       flexFloat64 `json:"trailingEps"`
				ForwardEps        flexFloat64 `json:"forwardEps"`
				SharesOutstanding flexFloat64 `json:"sharesOutstanding"`
				Beta              flexFloat64 `json:"beta"`
				PriceToBook       flexFloat64 `json:"priceToBook"`
				BookValue         flexFloat64 `json:"bookValue"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				ForwardPE         flexFloat64 `json:"forwardPE"`
				ForwardEps        flexFloat64 `json:"forwardEps"`
				TotalRevenue      flexFloat64 `json:"totalRevenue"`
				NetIncomeToCommon flexFloat64 `json:"netIncomeToCommon"`
				NetIncome         flexFloat64 `json:"netIncome"`
			} `json:"financialData"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// GetQuoteSummary retrieves fundamentals from the v10 quoteSummary endpoint,
// merging the summaryDetail, defaultKeyStatistics and financialData modules.
func (c *Client) GetQuoteSummary(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	params := url.Values{}
	params.Set("modules", "summaryDetail,defaultKeyStatistics,financialData")

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(symbol))

	var payload quoteSummaryResponse
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}

	results := payload.QuoteSummary.Result
	if len(results) == 0 {
		return nil, fmt.Errorf("yahoo quoteSummary %s: empty result: %w", symbol, models.ErrNoData)
	}

	r0 := results[0]
	summary := r0.SummaryDetail
	stats := r0.DefaultKeyStatistics
	financial := r0.FinancialData

	f := &models.Fundamentals{
		MarketCap:         firstPtr(summary.MarketCap.Ptr(), stats.MarketCap.Ptr()),
		TrailingPE:        summary.TrailingPE.Ptr(),
		ForwardPE:         firstPtr(summary.ForwardPE.Ptr(), financial.ForwardPE.Ptr()),
		TrailingEPS:       stats.TrailingEps.Ptr(),
		ForwardEPS:        firstPtr(stats.ForwardEps.Ptr(), financial.ForwardEps.Ptr()),
		SharesOutstanding: stats.SharesOutstanding.Ptr(),
		DividendRate:      firstPtr(summary.DividendRate.Ptr(), summary.TrailingAnnualDividendRate.Ptr()),
		DividendYield:     firstPtr(summary.DividendYield.Ptr(), summary.TrailingAnnualDividendYield.Ptr()),
		Beta:              firstPtr(summary.Beta.Ptr(), stats.Beta.Ptr()),
		PriceToSales:      summary.PriceToSalesTrailing12Months.Ptr(),
		PriceToBook:       stats.PriceToBook.Ptr(),
		BookValue:         stats.BookValue.Ptr(),
		TotalRevenue:      financial.TotalRevenue.Ptr(),
		NetIncome:         firstPtr(financial.NetIncomeToCommon.Ptr(), financial.NetIncome.Ptr()),
	}

	return f, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPtr(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
