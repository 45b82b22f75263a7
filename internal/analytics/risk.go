package analytics

import (
	"math"

	"github.com/stocklens/stocklens/internal/models"
)

// RiskInputs are the raw observations feeding the composite index. Nil means
// unavailable; unavailable sub-metrics are excluded rather than imputed.
type RiskInputs struct {
	Vol1Y        *float64 // annualized volatility, percent
	Vol30D       *float64
	Drawdown     *float64 // max drawdown, percent (negative)
	Beta         *float64
	Sharpe       *float64
	Sortino      *float64
	AvgVolume    *float64 // shares per day
	CurrentPrice float64
	MarketCap    *float64
}

// BuildRisk maps each available sub-metric to a [0,1] score through a linear
// clamp between metric-specific anchors, then averages the scores with fixed
// weights renormalized over the present subset. Index is nil (level Unknown)
// when nothing is available.
func BuildRisk(in RiskInputs) *models.Risk {
	var avgDollarVolume *float64
	if in.AvgVolume != nil && in.CurrentPrice > 0 {
		avgDollarVolume = models.Float(*in.AvgVolume * in.CurrentPrice)
	}

	var volRegime *float64
	if in.Vol30D != nil && in.Vol1Y != nil && *in.Vol1Y > 0 {
		volRegime = models.Float(*in.Vol30D / *in.Vol1Y)
	}

	volScore := clampScore(in.Vol1Y, 15, 25)
	vol30Score := clampScore(in.Vol30D, 15, 25)
	var ddScore *float64
	if in.Drawdown != nil {
		ddScore = models.Float(clamp01((math.Abs(*in.Drawdown) - 10) / 25))
	}
	betaScore := clampScore(in.Beta, 0.9, 0.6)
	var sharpeScore, sortinoScore *float64
	if in.Sharpe != nil {
		sharpeScore = models.Float(clamp01((1.2 - *in.Sharpe) / 1.2))
	}
	if in.Sortino != nil {
		sortinoScore = models.Float(clamp01((1.4 - *in.Sortino) / 1.4))
	}

	// Liquidity reads log10 of dollar volume when price context allows it,
	// share volume otherwise; the anchors shift with the unit.
	var liquidityScore *float64
	liquidityBase := avgDollarVolume
	low, high := 6.3, 7.3
	if liquidityBase == nil {
		liquidityBase = in.AvgVolume
		low, high = 5.5, 6.5
	}
	if liquidityBase != nil && *liquidityBase > 0 {
		lv := math.Log10(*liquidityBase)
		liquidityScore = models.Float(clamp01((high - lv) / (high - low)))
	}

	var sizeScore *float64
	if in.MarketCap != nil && *in.MarketCap > 0 {
		lv := math.Log10(*in.MarketCap)
		sizeScore = models.Float(clamp01((10.0 - lv) / (10.0 - 9.3)))
	}

	var regimeScore *float64
	if volRegime != nil {
		regimeScore = models.Float(clamp01((*volRegime - 1) / 0.6))
	}

	parts := []struct {
		score  *float64
		weight float64
	}{
		{volScore, 0.20},
		{vol30Score, 0.10},
		{ddScore, 0.20},
		{betaScore, 0.10},
		{sharpeScore, 0.10},
		{sortinoScore, 0.10},
		{liquidityScore, 0.10},
		{sizeScore, 0.05},
		{regimeScore, 0.05},
	}

	var weighted, weightSum float64
	present := false
	for _, p := range parts {
		if p.score == nil {
			continue
		}
		weighted += *p.score * p.weight
		weightSum += p.weight
		present = true
	}

	risk := &models.Risk{
		Version: "v1",
		Level:   models.RiskUnknown,
		Metrics: models.RiskMetrics{
			Vol1Y:           in.Vol1Y,
			Vol30D:          in.Vol30D,
			Drawdown:        in.Drawdown,
			Beta:            in.Beta,
			Sharpe:          in.Sharpe,
			Sortino:         in.Sortino,
			AvgDollarVolume: avgDollarVolume,
			AvgVolume:       in.AvgVolume,
			MarketCap:       in.MarketCap,
			VolRegime:       volRegime,
		},
	}

	if present {
		index := int(math.Round(weighted / weightSum * 100))
		risk.Index = &index
		switch {
		case index >= 67:
			risk.Level = models.RiskHigh
		case index >= 34:
			risk.Level = models.RiskMedium
		default:
			risk.Level = models.RiskLow
		}
	}

	return risk
}

// clampScore is the (v - anchor) / span linear clamp.
func clampScore(v *float64, anchor, span float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float(clamp01((*v - anchor) / span))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
