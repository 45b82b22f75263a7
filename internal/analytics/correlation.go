package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/stocklens/stocklens/internal/models"
)

// minCorrelationRows is the smallest complete sample the estimators accept.
const minCorrelationRows = 50

// BuildCorrelation computes the plain Pearson matrix and the sparse partial
// correlation matrix over the return/indicator feature table built from a
// daily series. Returns ErrInsufficientData when fewer than 50 complete rows
// survive warmup trimming.
func BuildCorrelation(o OHLCV) (*models.CorrelationMatrices, error) {
	vars, x, err := featureTable(o)
	if err != nil {
		return nil, err
	}

	p := len(vars)
	normal := mat.NewSymDense(p, nil)
	stat.CorrelationMatrix(normal, x, nil)

	partial, err := partialCorrelation(x)
	if err != nil {
		return nil, fmt.Errorf("partial correlation: %w", err)
	}

	return &models.CorrelationMatrices{
		Variables:     vars,
		PartialMatrix: denseRows(partial),
		NormalMatrix:  symRows(normal),
	}, nil
}

// BuildCorrelationTable flattens the partial matrix into its non-zero upper
// triangle plus, per variable, the partner with the largest absolute partial
// correlation.
func BuildCorrelationTable(o OHLCV) (*models.CorrelationTable, error) {
	vars, x, err := featureTable(o)
	if err != nil {
		return nil, err
	}

	partial, err := partialCorrelation(x)
	if err != nil {
		return nil, fmt.Errorf("partial correlation: %w", err)
	}

	var pairs []models.CorrelationPair
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			v := round3(partial.At(i, j))
			if v != 0 {
				pairs = append(pairs, models.CorrelationPair{
					Variable1: vars[i],
					Variable2: vars[j],
					Partial:   v,
				})
			}
		}
	}

	strongest := make(map[string]models.CorrelationPartner, len(vars))
	for i, name := range vars {
		maxVal := math.Inf(-1)
		maxJ := -1
		for j := range vars {
			if i == j {
				continue
			}
			if v := math.Abs(partial.At(i, j)); v > maxVal {
				maxVal = v
				maxJ = j
			}
		}
		if maxJ >= 0 {
			strongest[name] = models.CorrelationPartner{
				Variable: vars[maxJ],
				Value:    round3(partial.At(i, maxJ)),
			}
		}
	}

	return &models.CorrelationTable{Pairs: pairs, Strongest: strongest}, nil
}

// featureTable assembles the 25-column table of horizon returns, moving
// averages, and oscillators, then drops every row containing a NaN so the
// estimators see a complete sample.
func featureTable(o OHLCV) ([]string, *mat.Dense, error) {
	closes := o.Close

	type column struct {
		name string
		vals []float64
	}
	var cols []column
	add := func(name string, vals []float64) {
		cols = append(cols, column{name: name, vals: vals})
	}

	add("Return_1W", pctChangeN(closes, 5))
	add("Return_1M", pctChangeN(closes, 21))
	add("Return_3M", pctChangeN(closes, 63))
	add("Return_1Y", pctChangeN(closes, 252))
	add("Return_5Y", pctChangeN(closes, 252*5))

	for _, period := range []int{10, 50, 200} {
		add(fmt.Sprintf("SMA%d", period), SMA(closes, period))
		add(fmt.Sprintf("EMA%d", period), EMA(closes, period))
	}

	add("RSI14", RSI(closes, 14))
	macd, _, hist := MACD(closes)
	add("MACD", macd)
	add("MACD_Hist", hist)
	add("Stochastic14", StochasticK(o, 14))
	add("WilliamsR14", WilliamsR(o, 14))
	add("CCI20", CCI(o, 20))
	add("ADX14", ADX(o, 14))
	add("ROC12", ROC(closes, 12))
	add("Momentum10", Momentum(closes, 10))
	add("Momentum20", Momentum(closes, 20))
	add("Momentum3M", Momentum(closes, 63))
	add("TRIX15", TRIX(closes, 15))
	add("CMF20", CMF(o, 20))
	add("UltimateOsc", UltimateOscillator(o))

	n := len(closes)
	var rows [][]float64
	for i := 0; i < n; i++ {
		row := make([]float64, len(cols))
		complete := true
		for c, col := range cols {
			v := col.vals[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				complete = false
				break
			}
			row[c] = v
		}
		if complete {
			rows = append(rows, row)
		}
	}

	if len(rows) < minCorrelationRows {
		return nil, nil, models.ErrInsufficientData
	}

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.name
	}
	x := mat.NewDense(len(rows), len(cols), nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}
	return names, x, nil
}

// partialCorrelation scales the CV-selected sparse precision matrix into a
// partial correlation matrix with unit diagonal.
func partialCorrelation(x *mat.Dense) (*mat.Dense, error) {
	precision, err := graphicalLassoCV(x)
	if err != nil {
		return nil, err
	}

	p, _ := precision.Dims()
	scale := make([]float64, p)
	for i := 0; i < p; i++ {
		scale[i] = 1 / math.Sqrt(precision.At(i, i))
	}

	out := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i == j {
				out.Set(i, j, 1)
				continue
			}
			out.Set(i, j, -scale[i]*precision.At(i, j)*scale[j])
		}
	}
	return out, nil
}

func pctChangeN(vals []float64, n int) []float64 {
	out := fill(len(vals))
	for i := n; i < len(vals); i++ {
		prev := vals[i-n]
		if math.IsNaN(prev) || prev == 0 {
			continue
		}
		out[i] = (vals[i] - prev) / prev * 100
	}
	return out
}

func denseRows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		mat.Row(row, i, m)
		out[i] = row
	}
	return out
}

func symRows(m *mat.SymDense) [][]float64 {
	r := m.SymmetricDim()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, r)
		for j := 0; j < r; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
