package analytics

import (
	"math"
	"sort"

	"github.com/stocklens/stocklens/internal/models"
)

// monthLabels follow the TradingView-style seasonality table headings.
var monthLabels = []string{"Gen", "Feb", "Mar", "Apr", "Mag", "Giu", "Lug", "Ago", "Set", "Ott", "Nov", "Dic"}

const minPopulatedMonths = 6

// BuildSeasonality derives per-year monthly/cumulative return curves from a
// monthly-resampled series, plus cross-year percentile bands per calendar
// month. A year is kept only when it is the current year or has at least six
// populated months. Returns ErrInsufficientData when no year qualifies.
func BuildSeasonality(bars []models.Bar, currentYear int, excludeOutliers bool) (*models.Seasonality, error) {
	type obs struct {
		year  int
		month int
		ret   float64
	}

	var observations []obs
	prevClose := math.NaN()
	for _, b := range bars {
		if !isFiniteVal(b.Close) || !isFiniteVal(b.Open) || b.Open <= 0 {
			continue
		}
		ret := math.NaN()
		if isFiniteVal(prevClose) && prevClose != 0 {
			ret = (b.Close - prevClose) / prevClose * 100
		}
		prevClose = b.Close
		if !isFiniteVal(ret) {
			continue
		}
		observations = append(observations, obs{
			year:  b.Time.Year(),
			month: int(b.Time.Month()),
			ret:   ret,
		})
	}

	if excludeOutliers && len(observations) > 0 {
		vals := make([]float64, len(observations))
		for i, o := range observations {
			vals[i] = o.ret
		}
		lo := quantileLinear(vals, 0.05)
		hi := quantileLinear(vals, 0.95)
		if lo > hi {
			lo, hi = hi, lo
		}
		for i := range observations {
			if observations[i].ret < lo {
				observations[i].ret = lo
			} else if observations[i].ret > hi {
				observations[i].ret = hi
			}
		}
	}

	byYear := make(map[int][]*float64)
	for _, o := range observations {
		curve, ok := byYear[o.year]
		if !ok {
			curve = make([]*float64, 12)
			byYear[o.year] = curve
		}
		v := round2(o.ret)
		curve[o.month-1] = &v
	}

	seasonal := make(map[int][]*float64)
	cumulative := make(map[int][]*float64)
	for year, curve := range byYear {
		populated := 0
		for _, v := range curve {
			if v != nil {
				populated++
			}
		}
		if year != currentYear && populated < minPopulatedMonths {
			continue
		}
		if populated == 0 {
			continue
		}
		cum := make([]*float64, 12)
		acc := 0.0
		for i, v := range curve {
			if v == nil {
				continue
			}
			acc = (1+acc)*(1+*v/100) - 1
			c := round2(acc * 100)
			cum[i] = &c
		}
		seasonal[year] = curve
		cumulative[year] = cum
	}

	if len(seasonal) == 0 {
		return nil, models.ErrInsufficientData
	}

	years := make([]int, 0, len(seasonal))
	for y := range seasonal {
		years = append(years, y)
	}
	sort.Ints(years)

	return &models.Seasonality{
		Months:                monthLabels,
		SeasonalCurveByYear:   seasonal,
		CumulativeCurveByYear: cumulative,
		MonthlyPercentiles:    monthPercentiles(seasonal),
		CumulativePercentiles: monthPercentiles(cumulative),
		Years:                 years,
		ExcludeOutliers:       excludeOutliers,
	}, nil
}

// monthPercentiles takes, per calendar month, the nearest-rank 10th/50th/90th
// percentile of the non-nil curve values across years. A month nobody
// populated collapses to zeros.
func monthPercentiles(curves map[int][]*float64) []models.MonthlyPercentiles {
	out := make([]models.MonthlyPercentiles, 12)
	for m := 0; m < 12; m++ {
		var vals []float64
		for _, curve := range curves {
			if curve[m] != nil {
				vals = append(vals, *curve[m])
			}
		}
		if len(vals) == 0 {
			out[m] = models.MonthlyPercentiles{}
			continue
		}
		sort.Float64s(vals)
		n := len(vals)
		out[m] = models.MonthlyPercentiles{
			P10:    round2(vals[int(0.10*float64(n-1))]),
			Median: round2(vals[int(0.50*float64(n-1))]),
			P90:    round2(vals[int(0.90*float64(n-1))]),
		}
	}
	return out
}

// quantileLinear interpolates between the two closest order statistics, the
// same estimator numpy's default quantile uses.
func quantileLinear(vals []float64, q float64) float64 {
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if isFiniteVal(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	if len(clean) == 1 {
		return clean[0]
	}
	pos := q * float64(len(clean)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return clean[lo]
	}
	frac := pos - float64(lo)
	return clean[lo] + (clean[hi]-clean[lo])*frac
}

func isFiniteVal(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
