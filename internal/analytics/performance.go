package analytics

import (
	"math"

	"github.com/stocklens/stocklens/internal/models"
)

const (
	tradingDays  = 252
	riskFreeRate = 0.01
)

// BuildPerformance derives trailing return and volatility statistics from a
// close series. Windows longer than the series yield nil fields.
func BuildPerformance(closes []float64) *models.Performance {
	perf := &models.Performance{
		Return1Y:   calcReturn(closes, tradingDays),
		Return3Y:   calcReturn(closes, tradingDays*3),
		Return5Y:   calcReturn(closes, tradingDays*5),
		Momentum1M: calcReturn(closes, 21),
		Momentum3M: calcReturn(closes, 63),
	}

	returns := dailyReturns(closes)
	perf.Volatility = annualizedVol(returns)
	if len(returns) >= 30 {
		perf.Volatility30D = annualizedVol(tail(returns, 30))
	}
	if len(returns) >= tradingDays {
		perf.Volatility1Y = annualizedVol(tail(returns, tradingDays))
	}

	if len(closes) >= tradingDays {
		perf.MaxDrawdown1Y = maxDrawdown(tail(closes, tradingDays))
	}

	returns1Y := returns
	if len(returns) >= tradingDays {
		returns1Y = tail(returns, tradingDays)
	}
	annRet := annualizedReturn(returns1Y)

	if annRet != nil && perf.Volatility1Y != nil && *perf.Volatility1Y > 0 {
		vol := *perf.Volatility1Y / 100
		perf.SharpeRatio = models.Float(round2((*annRet - riskFreeRate) / vol))
	}

	var downside []float64
	for _, r := range returns1Y {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if annRet != nil && len(downside) > 1 {
		dd := sampleStd(downside) * math.Sqrt(tradingDays)
		if dd > 0 {
			perf.SortinoRatio = models.Float(round2((*annRet - riskFreeRate) / dd))
		}
	}

	return perf
}

// calcReturn is the percent change over the trailing `days` observations,
// nil when the series is too short.
func calcReturn(closes []float64, days int) *float64 {
	if len(closes) <= days {
		return nil
	}
	old := closes[len(closes)-days-1]
	if old == 0 {
		return nil
	}
	last := closes[len(closes)-1]
	return models.Float(round2((last - old) / old * 100))
}

// dailyReturns is the finite close-over-close percent change series.
func dailyReturns(closes []float64) []float64 {
	var out []float64
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		r := closes[i]/closes[i-1] - 1
		if !math.IsNaN(r) && !math.IsInf(r, 0) {
			out = append(out, r)
		}
	}
	return out
}

// annualizedVol scales the sample standard deviation of daily returns to a
// yearly percentage.
func annualizedVol(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}
	return models.Float(round2(sampleStd(returns) * math.Sqrt(tradingDays) * 100))
}

func annualizedReturn(returns []float64) *float64 {
	if len(returns) == 0 {
		return nil
	}
	return models.Float(math.Pow(1+mean(returns), tradingDays) - 1)
}

// maxDrawdown is the worst peak-to-trough decline, in percent.
func maxDrawdown(closes []float64) *float64 {
	if len(closes) == 0 {
		return nil
	}
	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			dd := c/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return models.Float(round2(worst * 100))
}

// OLSBeta regresses target daily returns on market daily returns, inner-
// joined by calendar date, and returns cov/var. Requires more than 10
// aligned observations and positive market variance.
func OLSBeta(target, market []models.Bar) *float64 {
	tr := returnsByDate(target)
	mr := returnsByDate(market)

	var t, m []float64
	for i := 1; i < len(target); i++ {
		day := target[i].Time.Format("2006-01-02")
		tv, tok := tr[day]
		mv, mok := mr[day]
		if !tok || !mok {
			continue
		}
		t = append(t, tv)
		m = append(m, mv)
	}
	if len(t) <= 10 {
		return nil
	}

	tMean, mMean := mean(t), mean(m)
	var cov, variance float64
	for i := range t {
		cov += (t[i] - tMean) * (m[i] - mMean)
		variance += (m[i] - mMean) * (m[i] - mMean)
	}
	if variance <= 0 {
		return nil
	}
	return models.Float(round2(cov / variance))
}

// returnsByDate maps each bar date to its close-over-close return.
func returnsByDate(bars []models.Bar) map[string]float64 {
	out := make(map[string]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		out[bars[i].Time.Format("2006-01-02")] = bars[i].Close/prev - 1
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd is the ddof=1 standard deviation.
func sampleStd(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	m := mean(vals)
	var acc float64
	for _, v := range vals {
		acc += (v - m) * (v - m)
	}
	return math.Sqrt(acc / float64(n-1))
}

func tail(vals []float64, n int) []float64 {
	if len(vals) <= n {
		return vals
	}
	return vals[len(vals)-n:]
}
