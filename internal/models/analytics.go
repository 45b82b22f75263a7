package models

// Action is a per-indicator vote.
type Action string

const (
	ActionBuy     Action = "Buy"
	ActionSell    Action = "Sell"
	ActionNeutral Action = "Neutral"
	// ActionStrongTrend is the ADX-specific classification; it counts as
	// neutral for aggregation purposes.
	ActionStrongTrend Action = "Strong Trend"
)

// Indicator is one computed indicator with its vote.
type Indicator struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Action Action  `json:"action"`
}

// TechnicalsReport is the full indicator battery with aggregate signals.
type TechnicalsReport struct {
	Overall        Action      `json:"overall"`
	MovingAverages []Indicator `json:"movingAveragesSummary"`
	Oscillators    []Indicator `json:"oscillatorsSummary"`
	MASignal       Action      `json:"maSignal"`
	OscSignal      Action      `json:"oscSignal"`
}

// RiskLevel buckets the composite risk index.
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

// RiskMetrics are the raw sub-metrics feeding the composite index. Nil means
// the metric was unavailable and was excluded from the weighted average.
type RiskMetrics struct {
	Vol1Y           *float64 `json:"vol1y"`
	Vol30D          *float64 `json:"vol30"`
	Drawdown        *float64 `json:"drawdown"`
	Beta            *float64 `json:"beta"`
	Sharpe          *float64 `json:"sharpe"`
	Sortino         *float64 `json:"sortino"`
	AvgDollarVolume *float64 `json:"avgDollarVolume"`
	AvgVolume       *float64 `json:"avgVolume"`
	MarketCap       *float64 `json:"marketCap"`
	VolRegime       *float64 `json:"volRegime"`
}

// Risk is the composite risk snapshot.
type Risk struct {
	Version string      `json:"version"`
	Level   RiskLevel   `json:"level"`
	Index   *int        `json:"index"`
	Metrics RiskMetrics `json:"metrics"`
}

// Performance holds trailing return and risk statistics. All percentages.
type Performance struct {
	Return1Y      *float64 `json:"return1Y"`
	Return3Y      *float64 `json:"return3Y"`
	Return5Y      *float64 `json:"return5Y"`
	Volatility    *float64 `json:"volatility"`
	Momentum1M    *float64 `json:"momentum1M"`
	Momentum3M    *float64 `json:"momentum3M"`
	Volatility30D *float64 `json:"volatility30D"`
	Volatility1Y  *float64 `json:"volatility1Y"`
	MaxDrawdown1Y *float64 `json:"maxDrawdown1Y"`
	SharpeRatio   *float64 `json:"sharpeRatio"`
	SortinoRatio  *float64 `json:"sortinoRatio"`
}

// OHLCPoint is one date-stamped bar in an API response. Date carries
// time-of-day only for sub-daily granularity.
type OHLCPoint struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// SnapshotInfo is the price/fundamentals header of a stock snapshot.
type SnapshotInfo struct {
	ShortName        string   `json:"shortName"`
	Sector           string   `json:"sector"`
	CurrentPrice     float64  `json:"currentPrice"`
	DailyLow         float64  `json:"dailyLow"`
	DailyHigh        float64  `json:"dailyHigh"`
	DailyChange      *float64 `json:"dailyChange"`
	MarketCap        *float64 `json:"marketCap"`
	PERatio          *float64 `json:"peRatio"`
	ForwardPE        *float64 `json:"forwardPE"`
	EPS              *float64 `json:"eps"`
	EPSForward       *float64 `json:"epsForward"`
	Dividend         *float64 `json:"dividend"`
	DividendYield    *float64 `json:"dividendYield"`
	Beta             *float64 `json:"beta"`
	Volume           *float64 `json:"volume"`
	FiftyTwoWeekLow  *float64 `json:"52WLow"`
	FiftyTwoWeekHigh *float64 `json:"52WHigh"`
	AverageVolume    *float64 `json:"averageVolume"`
	PriceToSales     *float64 `json:"priceToSalesTrailing12Months"`
	PriceToBook      *float64 `json:"priceToBook"`
}

// Snapshot is the full response of the stock endpoint.
type Snapshot struct {
	Info        SnapshotInfo `json:"info"`
	OHLC        []OHLCPoint  `json:"ohlc,omitempty"`
	Performance *Performance `json:"performance,omitempty"`
	Risk        *Risk        `json:"risk,omitempty"`
}

// PriceOnly is the reduced snapshot for priceOnly requests.
type PriceOnly struct {
	CurrentPrice float64  `json:"currentPrice"`
	DailyChange  *float64 `json:"dailyChange"`
	DailyLow     float64  `json:"dailyLow"`
	DailyHigh    float64  `json:"dailyHigh"`
}

// PriceOnlySnapshot wraps PriceOnly in the same envelope the full snapshot
// uses, so clients read `info` either way.
type PriceOnlySnapshot struct {
	Info PriceOnly `json:"info"`
}

// CorrelationMatrices holds the plain and partial correlation matrices over
// the same variable ordering.
type CorrelationMatrices struct {
	Variables     []string    `json:"variables"`
	PartialMatrix [][]float64 `json:"partial_matrix"`
	NormalMatrix  [][]float64 `json:"normal_matrix"`
}

// CorrelationPair is one upper-triangle entry of the partial matrix.
type CorrelationPair struct {
	Variable1 string  `json:"variable1"`
	Variable2 string  `json:"variable2"`
	Partial   float64 `json:"partialCorrelation"`
}

// CorrelationPartner names the largest-magnitude partner of a variable.
type CorrelationPartner struct {
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
}

// CorrelationTable is the compact table view of the partial matrix.
type CorrelationTable struct {
	Pairs     []CorrelationPair             `json:"partial_corr_table"`
	Strongest map[string]CorrelationPartner `json:"max_corr_per_variable"`
}

// MonthlyPercentiles are the cross-year percentile bands for one month.
type MonthlyPercentiles struct {
	P10    float64 `json:"p10"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Seasonality holds per-year monthly/cumulative return curves plus cross-year
// percentile bands. Curve slots are nil for months with no observation.
type Seasonality struct {
	Months                []string             `json:"months"`
	SeasonalCurveByYear   map[int][]*float64   `json:"seasonalCurveByYear"`
	CumulativeCurveByYear map[int][]*float64   `json:"cumulativeCurveByYear"`
	MonthlyPercentiles    []MonthlyPercentiles `json:"monthlyPercentiles"`
	CumulativePercentiles []MonthlyPercentiles `json:"cumulativePercentiles"`
	Years                 []int                `json:"years"`
	ExcludeOutliers       bool                 `json:"excludeOutliers"`
}

// Zone is one supply or demand price band.
type Zone struct {
	Price float64 `json:"price"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Zones groups detected bands by side.
type Zones struct {
	Support    []Zone `json:"support"`
	Resistance []Zone `json:"resistance"`
}

// MarketState classifies current price against the nearest zones.
type MarketState struct {
	State    string  `json:"state"` // IN_DEMAND, IN_SUPPLY, IN_NONE
	Strength float64 `json:"strength"`
}

// SupplyDemand is the full zone-detection response.
type SupplyDemand struct {
	Ticker       string      `json:"ticker"`
	CurrentPrice float64     `json:"current_price"`
	Zones        Zones       `json:"zones"`
	MarketState  MarketState `json:"market_state"`
	LastUpdate   string      `json:"last_update"`
}

// LivePrice is the lightweight current-price response.
type LivePrice struct {
	Ticker       string  `json:"ticker"`
	CurrentPrice float64 `json:"current_price"`
	LastUpdate   string  `json:"last_update"`
}

// History is the tail OHLC response.
type History struct {
	History []OHLCPoint `json:"history"`
}
