package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisplayNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"123.45", ptr(123.45)},
		{"1,234,567", ptr(1234567.0)},
		{"2.5K", ptr(2500.0)},
		{"3.1M", ptr(3.1e6)},
		{"1.2B", ptr(1.2e9)},
		{"2T", ptr(2e12)},
		{"4.5%", ptr(0.045)},
		{"-12.5", ptr(-12.5)},
		{"N/A", nil},
		{"--", nil},
		{"", nil},
		{"garbage", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDisplayNumber(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.InDelta(t, *tt.want, *got, 1e-9)
			}
		})
	}
}

func TestScrapeQuotePage_EmbeddedJSON(t *testing.T) {
	page := `<html><body><script>
		{"context":{"quoteSummary":"\"marketCap\":{\"raw\":2500000000,\"fmt\":\"2.5B\"}
		\"beta\":{\"raw\":1.25}
		\"shortName\":\"Acme Corp\"
		\"sector\":\"Technology\""}}
	</script></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	client := NewClient(WithPageURL(srv.URL))
	f, err := client.ScrapeQuotePage(context.Background(), "ACME")
	require.NoError(t, err)

	require.NotNil(t, f.MarketCap)
	assert.Equal(t, 2.5e9, *f.MarketCap)
	require.NotNil(t, f.Beta)
	assert.Equal(t, 1.25, *f.Beta)
	require.NotNil(t, f.ShortName)
	assert.Equal(t, "Acme Corp", *f.ShortName)
	require.NotNil(t, f.Sector)
	assert.Equal(t, "Technology", *f.Sector)
	assert.Nil(t, f.TrailingPE)
}

func TestScrapeQuotePage_FinStreamerFallback(t *testing.T) {
	page := `<html><body>
		<fin-streamer data-field="marketCap" data-value="1.8T"></fin-streamer>
		<fin-streamer data-field="trailingPE" data-value="28.4"></fin-streamer>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	client := NewClient(WithPageURL(srv.URL))
	f, err := client.ScrapeQuotePage(context.Background(), "AAPL")
	require.NoError(t, err)

	require.NotNil(t, f.MarketCap)
	assert.Equal(t, 1.8e12, *f.MarketCap)
	require.NotNil(t, f.TrailingPE)
	assert.Equal(t, 28.4, *f.TrailingPE)
}

func TestScrapeQuotePage_EmptySymbol(t *testing.T) {
	client := NewClient()
	_, err := client.ScrapeQuotePage(context.Background(), "  ")
	assert.Error(t, err)
}

func ptr(v float64) *float64 { return &v }
