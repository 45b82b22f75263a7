package analytics

import (
	"sort"

	"github.com/stocklens/stocklens/internal/models"
)

// ZoneParams tune supply/demand zone detection.
type ZoneParams struct {
	Bins               int
	Window             int
	StrengthPercentile float64
	PivotSource        string // "close" or "hilo"
}

// DefaultZoneParams mirror the daily-timeframe defaults.
func DefaultZoneParams() ZoneParams {
	return ZoneParams{Bins: 50, Window: 2, StrengthPercentile: 75, PivotSource: "close"}
}

// BuildZones histograms pivot bars into price bins weighted by the cumulative
// accumulation/distribution line, then keeps the bins whose weight clears the
// strength percentile. "close" pivots classify a bar as either a support or a
// resistance pivot; "hilo" pivots can mark both sides on the same bar.
func BuildZones(bars []models.Bar, p ZoneParams) models.Zones {
	if len(bars) == 0 || p.Bins <= 0 {
		return models.Zones{}
	}

	priceMin := bars[0].Low
	priceMax := bars[0].High
	for _, b := range bars {
		if b.Low < priceMin {
			priceMin = b.Low
		}
		if b.High > priceMax {
			priceMax = b.High
		}
	}

	edges := linspace(priceMin, priceMax, p.Bins+1)

	// Cumulative ADL; zero-range bars get a tiny range so the close-location
	// value stays finite.
	adl := make([]float64, len(bars))
	acc := 0.0
	for i, b := range bars {
		rng := b.High - b.Low
		if rng == 0 {
			rng = 1e-9
		}
		clv := ((b.Close - b.Low) - (b.High - b.Close)) / rng * b.Volume
		acc += clv
		adl[i] = acc
	}

	supportCounts := make([]float64, p.Bins)
	resistanceCounts := make([]float64, p.Bins)

	for i := p.Window; i < len(bars)-p.Window; i++ {
		binIdx := digitize(bars[i].Close, edges) - 1
		if binIdx < 0 {
			binIdx = 0
		}
		if binIdx > p.Bins-1 {
			binIdx = p.Bins - 1
		}

		if p.PivotSource == "hilo" {
			loMin, hiMax := windowExtremes(bars, i, p.Window)
			if bars[i].Low == loMin {
				supportCounts[binIdx] += adl[i]
			}
			if bars[i].High == hiMax {
				resistanceCounts[binIdx] += adl[i]
			}
		} else {
			cMin, cMax := windowCloseExtremes(bars, i, p.Window)
			if bars[i].Close == cMin {
				supportCounts[binIdx] += adl[i]
			} else if bars[i].Close == cMax {
				resistanceCounts[binIdx] += adl[i]
			}
		}
	}

	supportThreshold := quantileLinear(supportCounts, p.StrengthPercentile/100)
	resistanceThreshold := quantileLinear(resistanceCounts, p.StrengthPercentile/100)

	var zones models.Zones
	for i := 0; i < p.Bins; i++ {
		zone := models.Zone{
			Price: round2((edges[i] + edges[i+1]) / 2),
			Min:   round2(edges[i]),
			Max:   round2(edges[i+1]),
		}
		if supportCounts[i] >= supportThreshold {
			zones.Support = append(zones.Support, zone)
		}
		if resistanceCounts[i] >= resistanceThreshold {
			zones.Resistance = append(zones.Resistance, zone)
		}
	}
	return zones
}

// FilterZonesByDistance drops zones closer to the current price than minPct
// percent on the relevant side. When a side would end up empty, the unfiltered
// side is kept instead.
func FilterZonesByDistance(zones models.Zones, price, minPct float64) models.Zones {
	if price <= 0 || minPct <= 0 {
		return zones
	}
	minAbs := price * minPct / 100

	var supports []models.Zone
	for _, z := range zones.Support {
		if price-z.Price >= minAbs {
			supports = append(supports, z)
		}
	}
	var resistances []models.Zone
	for _, z := range zones.Resistance {
		if z.Price-price >= minAbs {
			resistances = append(resistances, z)
		}
	}

	if len(supports) == 0 {
		supports = zones.Support
	}
	if len(resistances) == 0 {
		resistances = zones.Resistance
	}
	return models.Zones{Support: supports, Resistance: resistances}
}

// MergeCloseZones collapses adjacent zones whose center prices sit within
// minGapPct percent of each other, averaging the price and widening the band
// to the union of both.
func MergeCloseZones(zones models.Zones, minGapPct float64) models.Zones {
	if minGapPct <= 0 {
		return zones
	}
	return models.Zones{
		Support:    mergeZoneList(zones.Support, minGapPct),
		Resistance: mergeZoneList(zones.Resistance, minGapPct),
	}
}

func mergeZoneList(items []models.Zone, minGapPct float64) []models.Zone {
	if len(items) == 0 {
		return items
	}
	sorted := make([]models.Zone, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	merged := []models.Zone{sorted[0]}
	for _, item := range sorted[1:] {
		last := merged[len(merged)-1]
		gap := item.Price - last.Price
		if gap < 0 {
			gap = -gap
		}
		if gap <= last.Price*minGapPct/100 {
			merged[len(merged)-1] = models.Zone{
				Price: round2((last.Price + item.Price) / 2),
				Min:   round2(minF(last.Min, item.Min)),
				Max:   round2(maxF(last.Max, item.Max)),
			}
		} else {
			merged = append(merged, item)
		}
	}
	return merged
}

// DetermineMarketState classifies price against the nearest support below and
// resistance above. Either side missing means no classification.
func DetermineMarketState(price float64, zones models.Zones, proximity float64) models.MarketState {
	var nearestSupport, nearestResistance *float64
	for _, z := range zones.Support {
		if z.Price <= price && (nearestSupport == nil || z.Price > *nearestSupport) {
			p := z.Price
			nearestSupport = &p
		}
	}
	for _, z := range zones.Resistance {
		if z.Price >= price && (nearestResistance == nil || z.Price < *nearestResistance) {
			p := z.Price
			nearestResistance = &p
		}
	}

	if nearestSupport == nil || nearestResistance == nil {
		return models.MarketState{State: "IN_NONE", Strength: 0}
	}

	distSupport := (price - *nearestSupport) / *nearestSupport * 100
	distResistance := (*nearestResistance - price) / *nearestResistance * 100
	strength := round2(100 - minF(distSupport, distResistance))

	switch {
	case distSupport < distResistance && distSupport < proximity:
		return models.MarketState{State: "IN_DEMAND", Strength: strength}
	case distResistance < distSupport && distResistance < proximity:
		return models.MarketState{State: "IN_SUPPLY", Strength: strength}
	default:
		return models.MarketState{State: "IN_NONE", Strength: strength}
	}
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// digitize returns the count of edges less than or equal to v, matching a
// right-open binning of ascending edges.
func digitize(v float64, edges []float64) int {
	return sort.Search(len(edges), func(i int) bool { return edges[i] > v })
}

func windowExtremes(bars []models.Bar, i, window int) (low, high float64) {
	low = bars[i-window].Low
	high = bars[i-window].High
	for j := i - window + 1; j <= i+window; j++ {
		if bars[j].Low < low {
			low = bars[j].Low
		}
		if bars[j].High > high {
			high = bars[j].High
		}
	}
	return low, high
}

func windowCloseExtremes(bars []models.Bar, i, window int) (min, max float64) {
	min = bars[i-window].Close
	max = min
	for j := i - window + 1; j <= i+window; j++ {
		c := bars[j].Close
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	return min, max
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
