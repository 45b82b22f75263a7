package analytics

import "math"

// OHLCV carries the aligned columns the indicator battery consumes.
type OHLCV struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// RSI computes the relative strength index using simple moving averages of
// the gain and loss legs. A zero average loss reads as RSI 100.
func RSI(closes []float64, n int) []float64 {
	delta := Diff(closes)
	up := clipLower(delta, 0)
	down := clipLower(neg(delta), 0)
	rollUp := SMA(up, n)
	rollDown := SMA(down, n)

	out := fill(len(closes))
	for i := range closes {
		ru, rd := rollUp[i], rollDown[i]
		if math.IsNaN(ru) || math.IsNaN(rd) {
			continue
		}
		out[i] = 100 - 100/(1+ru/rd)
	}
	return out
}

// MACD returns the MACD line (EMA12-EMA26), its EMA9 signal line, and the
// histogram.
func MACD(closes []float64) (macd, signal, hist []float64) {
	ema12 := EMA(closes, 12)
	ema26 := EMA(closes, 26)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = ema12[i] - ema26[i]
	}
	signal = EMA(macd, 9)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}

// StochasticK is the fast %K: 100*(close-lowN)/(highN-lowN).
func StochasticK(o OHLCV, n int) []float64 {
	lowN := RollingMin(o.Low, n)
	highN := RollingMax(o.High, n)
	out := fill(len(o.Close))
	for i := range o.Close {
		rng := highN[i] - lowN[i]
		if math.IsNaN(rng) {
			continue
		}
		out[i] = 100 * (o.Close[i] - lowN[i]) / rng
	}
	return out
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|); the first
// bar has no previous close so its range is high-low.
func TrueRange(o OHLCV) []float64 {
	prevClose := Shift(o.Close, 1)
	out := make([]float64, len(o.Close))
	for i := range o.Close {
		tr := o.High[i] - o.Low[i]
		if !math.IsNaN(prevClose[i]) {
			tr = math.Max(tr, math.Abs(o.High[i]-prevClose[i]))
			tr = math.Max(tr, math.Abs(o.Low[i]-prevClose[i]))
		}
		out[i] = tr
	}
	return out
}

// ATR is the simple moving average of the true range.
func ATR(o OHLCV, n int) []float64 {
	return SMA(TrueRange(o), n)
}

// CCI is the commodity channel index over the typical price.
func CCI(o OHLCV, n int) []float64 {
	tp := make([]float64, len(o.Close))
	for i := range o.Close {
		tp[i] = (o.High[i] + o.Low[i] + o.Close[i]) / 3
	}
	smaTP := SMA(tp, n)
	meanDev := RollingMeanAbsDev(tp, n)
	out := fill(len(o.Close))
	for i := range o.Close {
		if math.IsNaN(smaTP[i]) || math.IsNaN(meanDev[i]) || meanDev[i] == 0 {
			continue
		}
		out[i] = (tp[i] - smaTP[i]) / (0.015 * meanDev[i])
	}
	return out
}

// ADX is the average directional index with directional movement taken as
// the clipped one-bar high/low differences.
func ADX(o OHLCV, n int) []float64 {
	plusDM := clipLower(Diff(o.High), 0)
	minusDM := clipLower(neg(Diff(o.Low)), 0)
	trSum := RollingSum(TrueRange(o), n)
	plusSum := RollingSum(plusDM, n)
	minusSum := RollingSum(minusDM, n)

	dx := fill(len(o.Close))
	for i := range o.Close {
		if math.IsNaN(plusSum[i]) || math.IsNaN(minusSum[i]) || math.IsNaN(trSum[i]) || trSum[i] == 0 {
			continue
		}
		plusDI := 100 * plusSum[i] / trSum[i]
		minusDI := 100 * minusSum[i] / trSum[i]
		if plusDI+minusDI == 0 {
			continue
		}
		dx[i] = math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100
	}
	return SMA(dx, n)
}

// WilliamsR is -100*(highN-close)/(highN-lowN).
func WilliamsR(o OHLCV, n int) []float64 {
	highN := RollingMax(o.High, n)
	lowN := RollingMin(o.Low, n)
	out := fill(len(o.Close))
	for i := range o.Close {
		rng := highN[i] - lowN[i]
		if math.IsNaN(rng) {
			continue
		}
		out[i] = -100 * (highN[i] - o.Close[i]) / rng
	}
	return out
}

// ROC is the n-step percent rate of change.
func ROC(closes []float64, n int) []float64 {
	shifted := Shift(closes, n)
	out := fill(len(closes))
	for i := range closes {
		if math.IsNaN(shifted[i]) || shifted[i] == 0 {
			continue
		}
		out[i] = (closes[i] - shifted[i]) / shifted[i] * 100
	}
	return out
}

// Momentum is the n-step absolute price change.
func Momentum(closes []float64, n int) []float64 {
	shifted := Shift(closes, n)
	out := fill(len(closes))
	for i := range closes {
		if math.IsNaN(shifted[i]) {
			continue
		}
		out[i] = closes[i] - shifted[i]
	}
	return out
}

// TRIX is the percent change of a triple-smoothed EMA, scaled to percent.
func TRIX(closes []float64, n int) []float64 {
	ema1 := EMA(closes, n)
	ema2 := EMA(ema1, n)
	ema3 := EMA(ema2, n)
	pct := PctChange(ema3)
	out := make([]float64, len(closes))
	for i := range closes {
		out[i] = pct[i] * 100
	}
	return out
}

// UltimateOscillator is the 7/14/28 weighted buying-pressure oscillator, with
// buying pressure taken against the bar's own low.
func UltimateOscillator(o OHLCV) []float64 {
	n := len(o.Close)
	bp := make([]float64, n)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		bp[i] = o.Close[i] - o.Low[i]
		tr[i] = o.High[i] - o.Low[i]
	}

	avg := func(w int) []float64 {
		num := RollingSum(bp, w)
		den := RollingSum(tr, w)
		out := fill(n)
		for i := 0; i < n; i++ {
			if math.IsNaN(num[i]) || math.IsNaN(den[i]) || den[i] == 0 {
				continue
			}
			out[i] = num[i] / den[i]
		}
		return out
	}

	avg7, avg14, avg28 := avg(7), avg(14), avg(28)
	out := fill(n)
	for i := 0; i < n; i++ {
		out[i] = 100 * (4*avg7[i] + 2*avg14[i] + avg28[i]) / 7
	}
	return out
}

// CMF is the Chaikin money flow: rolling sum of money-flow volume over
// rolling sum of volume.
func CMF(o OHLCV, n int) []float64 {
	size := len(o.Close)
	mf := make([]float64, size)
	for i := 0; i < size; i++ {
		rng := o.High[i] - o.Low[i]
		if rng == 0 {
			mf[i] = 0
			continue
		}
		mf[i] = ((o.Close[i] - o.Low[i]) - (o.High[i] - o.Close[i])) / rng * o.Volume[i]
	}
	mfSum := RollingSum(mf, n)
	volSum := RollingSum(o.Volume, n)
	out := fill(size)
	for i := 0; i < size; i++ {
		if math.IsNaN(mfSum[i]) || math.IsNaN(volSum[i]) || volSum[i] == 0 {
			continue
		}
		out[i] = mfSum[i] / volSum[i]
	}
	return out
}
