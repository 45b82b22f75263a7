package analytics

import (
	"fmt"
	"math"

	"github.com/stocklens/stocklens/internal/models"
)

var maPeriods = []int{10, 20, 50, 100, 200}

// BuildTechnicals computes the full indicator battery and aggregate signals.
// Moving averages whose lookback exceeds the series are skipped, as is any
// oscillator whose latest value is undefined.
func BuildTechnicals(o OHLCV) *models.TechnicalsReport {
	lastClose := Last(o.Close)

	priceVote := func(value float64) models.Action {
		switch {
		case lastClose > value:
			return models.ActionBuy
		case lastClose < value:
			return models.ActionSell
		default:
			return models.ActionNeutral
		}
	}

	var mas []models.Indicator
	addMA := func(name string, vals []float64) {
		v := Last(vals)
		if math.IsNaN(v) {
			return
		}
		mas = append(mas, models.Indicator{Name: name, Value: round2(v), Action: priceVote(v)})
	}

	periods := make([]int, 0, len(maPeriods))
	for _, p := range maPeriods {
		if len(o.Close) >= p {
			periods = append(periods, p)
		}
	}

	for _, p := range periods {
		addMA(fmt.Sprintf("SMA%d", p), SMA(o.Close, p))
		addMA(fmt.Sprintf("EMA%d", p), EMA(o.Close, p))
	}
	for _, p := range periods {
		addMA(fmt.Sprintf("WMA%d", p), WMA(o.Close, p))
		addMA(fmt.Sprintf("HMA%d", p), HMA(o.Close, p))
		addMA(fmt.Sprintf("TEMA%d", p), TEMA(o.Close, p))
	}

	var oscs []models.Indicator
	addOsc := func(name string, value float64, action models.Action) {
		if math.IsNaN(value) {
			return
		}
		oscs = append(oscs, models.Indicator{Name: name, Value: round2(value), Action: action})
	}

	overboughtVote := func(v, sellAbove, buyBelow float64) models.Action {
		switch {
		case v > sellAbove:
			return models.ActionSell
		case v < buyBelow:
			return models.ActionBuy
		default:
			return models.ActionNeutral
		}
	}
	zeroVote := func(v float64) models.Action {
		switch {
		case v > 0:
			return models.ActionBuy
		case v < 0:
			return models.ActionSell
		default:
			return models.ActionNeutral
		}
	}
	cciVote := func(v float64) models.Action {
		switch {
		case v < -100:
			return models.ActionBuy
		case v > 100:
			return models.ActionSell
		default:
			return models.ActionNeutral
		}
	}
	williamsVote := func(v float64) models.Action {
		switch {
		case v > -20:
			return models.ActionSell
		case v < -80:
			return models.ActionBuy
		default:
			return models.ActionNeutral
		}
	}

	rsi14 := Last(RSI(o.Close, 14))
	addOsc("RSI14", rsi14, overboughtVote(rsi14, 70, 30))

	macd, signal, hist := MACD(o.Close)
	lastMACD, lastSignal := Last(macd), Last(signal)
	macdAction := models.ActionNeutral
	if lastMACD > lastSignal {
		macdAction = models.ActionBuy
	} else if lastMACD < lastSignal {
		macdAction = models.ActionSell
	}
	addOsc("MACD", lastMACD, macdAction)

	stoch := Last(StochasticK(o, 14))
	addOsc("Stochastic14", stoch, overboughtVote(stoch, 80, 20))

	addOsc("ATR14", Last(ATR(o, 14)), models.ActionNeutral)

	cci20 := Last(CCI(o, 20))
	addOsc("CCI20", cci20, cciVote(cci20))

	adx := Last(ADX(o, 14))
	adxAction := models.ActionNeutral
	if adx > 25 {
		adxAction = models.ActionStrongTrend
	}
	addOsc("ADX14", adx, adxAction)

	willr := Last(WilliamsR(o, 14))
	addOsc("WilliamsR14", willr, williamsVote(willr))

	roc12 := Last(ROC(o.Close, 12))
	addOsc("ROC12", roc12, zeroVote(roc12))

	mom10 := Last(Momentum(o.Close, 10))
	addOsc("Momentum10", mom10, zeroVote(mom10))

	// quarterly momentum reads as flat, not missing, on short series
	mom3M := Last(Momentum(o.Close, 63))
	if math.IsNaN(mom3M) {
		mom3M = 0
	}
	addOsc("Momentum3M", mom3M, zeroVote(mom3M))

	trix := Last(TRIX(o.Close, 15))
	addOsc("TRIX15", trix, zeroVote(trix))

	uo := Last(UltimateOscillator(o))
	addOsc("UltimateOsc", uo, overboughtVote(uo, 70, 30))

	cci50 := Last(CCI(o, 50))
	addOsc("CCI50", cci50, cciVote(cci50))

	rsi7 := Last(RSI(o.Close, 7))
	addOsc("RSI7", rsi7, overboughtVote(rsi7, 70, 30))

	rsi21 := Last(RSI(o.Close, 21))
	addOsc("RSI21", rsi21, overboughtVote(rsi21, 70, 30))

	stochSlow := Last(StochasticK(o, 14))
	addOsc("StochSlow", stochSlow, overboughtVote(stochSlow, 80, 20))

	willr50 := Last(WilliamsR(o, 50))
	addOsc("WilliamsR50", willr50, williamsVote(willr50))

	lastHist := Last(hist)
	addOsc("MACD_Hist", lastHist, zeroVote(lastHist))

	roc6 := Last(ROC(o.Close, 6))
	addOsc("ROC6", roc6, zeroVote(roc6))

	mom20 := Last(Momentum(o.Close, 20))
	addOsc("Momentum20", mom20, zeroVote(mom20))

	cmf := Last(CMF(o, 20))
	addOsc("CMF20", cmf, zeroVote(cmf))

	maSignal := majority(mas)
	oscSignal := majority(oscs)

	overall := models.ActionNeutral
	if maSignal == models.ActionBuy && oscSignal == models.ActionBuy {
		overall = models.ActionBuy
	} else if maSignal == models.ActionSell && oscSignal == models.ActionSell {
		overall = models.ActionSell
	}

	return &models.TechnicalsReport{
		Overall:        overall,
		MovingAverages: mas,
		Oscillators:    oscs,
		MASignal:       maSignal,
		OscSignal:      oscSignal,
	}
}

func majority(indicators []models.Indicator) models.Action {
	buy, sell := 0, 0
	for _, ind := range indicators {
		switch ind.Action {
		case models.ActionBuy:
			buy++
		case models.ActionSell:
			sell++
		}
	}
	switch {
	case buy > sell:
		return models.ActionBuy
	case sell > buy:
		return models.ActionSell
	default:
		return models.ActionNeutral
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
