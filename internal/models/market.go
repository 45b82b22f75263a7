// Package models defines data structures for stocklens
package models

import (
	"errors"
	"math"
	"time"
)

// Sentinel outcomes surfaced by the service layer. Provider-level failures are
// never propagated; these describe what the whole chain produced.
var (
	// ErrNoData means every candidate and every source came back empty.
	ErrNoData = errors.New("no data available")
	// ErrInsufficientData means data exists but is below the minimum sample
	// size a computation requires.
	ErrInsufficientData = errors.New("insufficient data")
)

// Interval is a canonical bar granularity understood by the source chain.
type Interval string

const (
	IntervalMinute Interval = "1m"
	Interval60m    Interval = "60m"
	Interval240m   Interval = "240m"
	IntervalDaily  Interval = "1d"
	IntervalWeekly Interval = "1wk"
	IntervalMonth  Interval = "1mo"
)

// Intraday reports whether the interval is finer than one day.
func (i Interval) Intraday() bool {
	return i == IntervalMinute || i == Interval60m || i == Interval240m
}

// MapTimeframe converts a user-facing timeframe token to a canonical interval.
// Unknown tokens fall back to daily.
func MapTimeframe(tf string) Interval {
	switch tf {
	case "1h":
		return Interval60m
	case "4h":
		return Interval240m
	case "1w":
		return IntervalWeekly
	case "1mo":
		return IntervalMonth
	default:
		return IntervalDaily
	}
}

// Bar represents a single OHLCV bucket. Timestamps are naive exchange-local
// time: upstream epoch seconds are kept as-is rather than converted to UTC,
// so a month or day never slips across a timezone boundary.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ascending, gap-tolerant sequence of bars for one symbol at one
// granularity.
type Series struct {
	Symbol   string   `json:"symbol"`
	Interval Interval `json:"interval"`
	Bars     []Bar    `json:"bars"`
}

// Empty reports whether the series holds no bars.
func (s Series) Empty() bool { return len(s.Bars) == 0 }

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Closes returns the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Tail returns the last n bars (or the whole series when shorter).
func (s Series) Tail(n int) Series {
	if n <= 0 || len(s.Bars) <= n {
		return s
	}
	return Series{Symbol: s.Symbol, Interval: s.Interval, Bars: s.Bars[len(s.Bars)-n:]}
}

// LastClose returns the most recent close, or NaN for an empty series.
func (s Series) LastClose() float64 {
	if len(s.Bars) == 0 {
		return math.NaN()
	}
	return s.Bars[len(s.Bars)-1].Close
}

// Fundamentals is a sparse accumulation of named fields merged from multiple
// providers. Nil means "not yet known"; a field set by a higher-priority
// source is never overwritten by a lower-priority one.
type Fundamentals struct {
	ShortName *string `json:"shortName,omitempty"`
	Sector    *string `json:"sector,omitempty"`

	MarketCap         *float64 `json:"marketCap,omitempty"`
	TrailingPE        *float64 `json:"trailingPE,omitempty"`
	ForwardPE         *float64 `json:"forwardPE,omitempty"`
	TrailingEPS       *float64 `json:"trailingEps,omitempty"`
	ForwardEPS        *float64 `json:"epsForward,omitempty"`
	SharesOutstanding *float64 `json:"sharesOutstanding,omitempty"`
	DividendRate      *float64 `json:"dividendRate,omitempty"`
	DividendYield     *float64 `json:"dividendYield,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	PriceToBook       *float64 `json:"priceToBook,omitempty"`
	PriceToSales      *float64 `json:"priceToSalesTrailing12Months,omitempty"`
	BookValue         *float64 `json:"bookValue,omitempty"`
	TotalRevenue      *float64 `json:"totalRevenue,omitempty"`
	NetIncome         *float64 `json:"netIncomeToCommon,omitempty"`
	EarningsGrowth    *float64 `json:"earningsGrowth,omitempty"`
	AverageVolume     *float64 `json:"averageVolume,omitempty"`
	Volume            *float64 `json:"volume,omitempty"`
	FiftyTwoWeekLow   *float64 `json:"fiftyTwoWeekLow,omitempty"`
	FiftyTwoWeekHigh  *float64 `json:"fiftyTwoWeekHigh,omitempty"`
}

// ChartData holds the parallel OHLCV columns returned by the chart endpoint.
// Columns may contain nils where the exchange reported no trade.
type ChartData struct {
	Timestamps []int64
	Open       []*float64
	High       []*float64
	Low        []*float64
	Close      []*float64
	Volume     []*float64
	Meta       ChartMeta
}

// ChartMeta carries the side-channel metadata returned by the chart endpoint.
type ChartMeta struct {
	Symbol              string   `json:"symbol,omitempty"`
	ShortName           string   `json:"shortName,omitempty"`
	RegularMarketPrice  *float64 `json:"regularMarketPrice,omitempty"`
	RegularMarketVolume *float64 `json:"regularMarketVolume,omitempty"`
	FiftyTwoWeekLow     *float64 `json:"fiftyTwoWeekLow,omitempty"`
	FiftyTwoWeekHigh    *float64 `json:"fiftyTwoWeekHigh,omitempty"`
}

// Float returns a pointer to v; convenience for building sparse structs.
func Float(v float64) *float64 { return &v }

// Text returns a pointer to s.
func Text(s string) *string { return &s }
