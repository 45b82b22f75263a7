// Package analytics implements the indicator battery, risk composite,
// correlation, seasonality and supply/demand engines over OHLCV series.
//
// All series functions operate on aligned float slices and return a slice of
// the same length, with NaN filling the warmup prefix where a value is not
// yet defined. NaN propagates through arithmetic the same way missing values
// flow through a dataframe, which keeps the composition of primitives simple.
package analytics

import "math"

var nan = math.NaN()

// SMA is the simple moving average over window n. Windows containing NaN
// yield NaN; later windows recover once the NaN rolls out.
func SMA(vals []float64, n int) []float64 {
	return rollingMeanSkipless(vals, n)
}

// EMA is the exponential moving average with span n (alpha = 2/(n+1)),
// seeded with the first value.
func EMA(vals []float64, n int) []float64 {
	out := fill(len(vals))
	if n <= 0 || len(vals) == 0 {
		return out
	}
	alpha := 2.0 / (float64(n) + 1.0)
	prev := nan
	for i, v := range vals {
		if math.IsNaN(v) {
			out[i] = prev
			continue
		}
		if math.IsNaN(prev) {
			prev = v
		} else {
			prev = prev + alpha*(v-prev)
		}
		out[i] = prev
	}
	return out
}

// WMA is the linearly weighted moving average over window n.
func WMA(vals []float64, n int) []float64 {
	out := fill(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	weightSum := float64(n*(n+1)) / 2.0
	for i := n - 1; i < len(vals); i++ {
		acc := 0.0
		ok := true
		for j := 0; j < n; j++ {
			v := vals[i-n+1+j]
			if math.IsNaN(v) {
				ok = false
				break
			}
			acc += v * float64(j+1)
		}
		if ok {
			out[i] = acc / weightSum
		}
	}
	return out
}

// HMA is the Hull moving average: SMA(sqrt(n)) of 2*WMA(n/2) - WMA(n).
func HMA(vals []float64, n int) []float64 {
	half := n / 2
	sqrtLen := int(math.Sqrt(float64(n)))
	wmaHalf := WMA(vals, half)
	wmaFull := WMA(vals, n)
	diff := make([]float64, len(vals))
	for i := range vals {
		diff[i] = 2*wmaHalf[i] - wmaFull[i]
	}
	return rollingMeanSkipless(diff, sqrtLen)
}

// TEMA is the triple exponential moving average: 3*EMA - 3*EMA² + EMA³.
func TEMA(vals []float64, n int) []float64 {
	ema1 := EMA(vals, n)
	ema2 := EMA(ema1, n)
	ema3 := EMA(ema2, n)
	out := make([]float64, len(vals))
	for i := range vals {
		out[i] = 3*ema1[i] - 3*ema2[i] + ema3[i]
	}
	return out
}

// Diff is the first difference; out[0] is NaN.
func Diff(vals []float64) []float64 {
	out := fill(len(vals))
	for i := 1; i < len(vals); i++ {
		out[i] = vals[i] - vals[i-1]
	}
	return out
}

// Shift returns vals delayed by n slots, NaN-padded at the front.
func Shift(vals []float64, n int) []float64 {
	out := fill(len(vals))
	for i := n; i < len(vals); i++ {
		out[i] = vals[i-n]
	}
	return out
}

// RollingSum sums each trailing window of n values; NaN inputs poison their
// windows.
func RollingSum(vals []float64, n int) []float64 {
	out := fill(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	for i := n - 1; i < len(vals); i++ {
		acc := 0.0
		for j := i - n + 1; j <= i; j++ {
			acc += vals[j]
		}
		out[i] = acc
	}
	return out
}

// RollingMin takes the minimum of each trailing window of n values.
func RollingMin(vals []float64, n int) []float64 {
	return rollingExtreme(vals, n, func(a, b float64) bool { return b < a })
}

// RollingMax takes the maximum of each trailing window of n values.
func RollingMax(vals []float64, n int) []float64 {
	return rollingExtreme(vals, n, func(a, b float64) bool { return b > a })
}

func rollingExtreme(vals []float64, n int, better func(cur, cand float64) bool) []float64 {
	out := fill(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	for i := n - 1; i < len(vals); i++ {
		best := vals[i-n+1]
		for j := i - n + 2; j <= i; j++ {
			if math.IsNaN(best) || (!math.IsNaN(vals[j]) && better(best, vals[j])) {
				best = vals[j]
			}
		}
		out[i] = best
	}
	return out
}

// RollingMeanAbsDev is the mean absolute deviation from the window mean.
func RollingMeanAbsDev(vals []float64, n int) []float64 {
	out := fill(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	for i := n - 1; i < len(vals); i++ {
		mean := 0.0
		for j := i - n + 1; j <= i; j++ {
			mean += vals[j]
		}
		mean /= float64(n)
		dev := 0.0
		for j := i - n + 1; j <= i; j++ {
			dev += math.Abs(vals[j] - mean)
		}
		out[i] = dev / float64(n)
	}
	return out
}

// PctChange is the one-step relative change; NaN where undefined.
func PctChange(vals []float64) []float64 {
	out := fill(len(vals))
	for i := 1; i < len(vals); i++ {
		if vals[i-1] != 0 && !math.IsNaN(vals[i-1]) && !math.IsNaN(vals[i]) {
			out[i] = vals[i]/vals[i-1] - 1
		}
	}
	return out
}

// rollingMeanSkipless averages trailing windows, requiring every member to be
// a number. Used where a NaN warmup must stay NaN.
func rollingMeanSkipless(vals []float64, n int) []float64 {
	out := fill(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	for i := n - 1; i < len(vals); i++ {
		acc := 0.0
		ok := true
		for j := i - n + 1; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				ok = false
				break
			}
			acc += vals[j]
		}
		if ok {
			out[i] = acc / float64(n)
		}
	}
	return out
}

// Last returns the final value of a series, or NaN for an empty one.
func Last(vals []float64) float64 {
	if len(vals) == 0 {
		return nan
	}
	return vals[len(vals)-1]
}

func fill(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = nan
	}
	return out
}

// clipLower replaces values below floor with floor.
func clipLower(vals []float64, floor float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v < floor {
			out[i] = floor
		} else {
			out[i] = v
		}
	}
	return out
}

// neg negates every value.
func neg(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = -v
	}
	return out
}
