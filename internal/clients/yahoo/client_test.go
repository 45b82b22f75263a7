package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stocklens/stocklens/internal/models"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {
        "symbol": "AAPL",
        "shortName": "Apple Inc.",
        "regularMarketPrice": 190.5,
        "regularMarketVolume": 52000000,
        "fiftyTwoWeekLow": 124.17,
        "fiftyTwoWeekHigh": 199.62
      },
      "timestamp": [1700000000, 1700086400, 1700172800],
      "indicators": {
        "quote": [{
          "open":   [100.0, 101.0, null],
          "high":   [102.0, 103.0, 104.0],
          "low":    [99.0, 100.5, 101.0],
          "close":  [101.5, 102.5, null],
          "volume": [1000000, null, 1200000]
        }]
      }
    }],
    "error": null
  }
}`

func TestGetChart_ParsesResponse(t *testing.T) {
	var capturedPath, capturedQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	chart, err := client.GetChart(context.Background(), "AAPL", "1y", "1d")
	if err != nil {
		t.Fatalf("GetChart failed: %v", err)
	}

	if capturedPath != "/v8/finance/chart/AAPL" {
		t.Errorf("expected path /v8/finance/chart/AAPL, got %s", capturedPath)
	}
	if !strings.Contains(capturedQuery, "range=1y") || !strings.Contains(capturedQuery, "interval=1d") {
		t.Errorf("query missing range/interval: %s", capturedQuery)
	}
	if len(chart.Timestamps) != 3 {
		t.Fatalf("expected 3 timestamps, got %d", len(chart.Timestamps))
	}
	if chart.Close[0] == nil || *chart.Close[0] != 101.5 {
		t.Errorf("expected close[0] 101.5, got %v", chart.Close[0])
	}
	if chart.Close[2] != nil {
		t.Errorf("expected close[2] nil, got %v", *chart.Close[2])
	}
	if chart.Meta.ShortName != "Apple Inc." {
		t.Errorf("expected meta shortName Apple Inc., got %s", chart.Meta.ShortName)
	}
	if chart.Meta.RegularMarketPrice == nil || *chart.Meta.RegularMarketPrice != 190.5 {
		t.Errorf("expected meta regularMarketPrice 190.5, got %v", chart.Meta.RegularMarketPrice)
	}
}

func TestGetChart_EmptyResultIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetChart(context.Background(), "NOPE", "1y", "1d")
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestGetChart_APIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetChart(context.Background(), "NOPE", "1y", "1d")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apiErr.StatusCode)
	}
}

func TestGetQuote_ParsesFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[{
			"shortName": "Apple Inc.",
			"marketCap": 2950000000000,
			"trailingPE": 31.2,
			"epsTrailingTwelveMonths": 6.1,
			"sharesOutstanding": 15500000000,
			"trailingAnnualDividendRate": 0.96
		}]}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	f, err := client.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}

	if f.ShortName == nil || *f.ShortName != "Apple Inc." {
		t.Errorf("expected shortName Apple Inc., got %v", f.ShortName)
	}
	if f.MarketCap == nil || *f.MarketCap != 2.95e12 {
		t.Errorf("expected marketCap 2.95e12, got %v", f.MarketCap)
	}
	if f.TrailingEPS == nil || *f.TrailingEPS != 6.1 {
		t.Errorf("expected trailingEps 6.1, got %v", f.TrailingEPS)
	}
	// dividendRate missing: falls back to trailingAnnualDividendRate
	if f.DividendRate == nil || *f.DividendRate != 0.96 {
		t.Errorf("expected dividendRate fallback 0.96, got %v", f.DividendRate)
	}
	if f.Beta != nil {
		t.Errorf("expected nil beta when absent, got %v", *f.Beta)
	}
}

func TestGetQuoteSummary_UnwrapsRawValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{
			"summaryDetail": {
				"marketCap": {"raw": 1500000000, "fmt": "1.5B"},
				"trailingPE": {"raw": 22.5, "fmt": "22.50"},
				"beta": {}
			},
			"defaultKeyStatistics": {
				"trailingEps": {"raw": 3.2},
				"beta": {"raw": 1.1}
			},
			"financialData": {
				"totalRevenue": {"raw": 980000000},
				"netIncome": {"raw": 120000000}
			}
		}]}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	f, err := client.GetQuoteSummary(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("GetQuoteSummary failed: %v", err)
	}

	if f.MarketCap == nil || *f.MarketCap != 1.5e9 {
		t.Errorf("expected marketCap 1.5e9, got %v", f.MarketCap)
	}
	if f.TrailingEPS == nil || *f.TrailingEPS != 3.2 {
		t.Errorf("expected trailingEps 3.2, got %v", f.TrailingEPS)
	}
	// summaryDetail beta empty object: falls through to defaultKeyStatistics
	if f.Beta == nil || *f.Beta != 1.1 {
		t.Errorf("expected beta fallback 1.1, got %v", f.Beta)
	}
	// netIncomeToCommon missing: falls back to netIncome
	if f.NetIncome == nil || *f.NetIncome != 1.2e8 {
		t.Errorf("expected netIncome fallback 1.2e8, got %v", f.NetIncome)
	}
}
