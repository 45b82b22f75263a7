package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/stocklens/stocklens/internal/models"
)

// syntheticOHLCV mixes a trend with two sine cycles so no column is constant
// and the estimators see genuine co-movement.
func syntheticOHLCV(n int) OHLCV {
	o := OHLCV{
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  make([]float64, n),
		Volume: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x := float64(i)
		c := 100 + 0.05*x + 8*math.Sin(x/9) + 3*math.Sin(x/23)
		o.Close[i] = c
		o.Open[i] = c - 0.3
		o.High[i] = c + 1 + 0.5*math.Abs(math.Sin(x/5))
		o.Low[i] = c - 1 - 0.5*math.Abs(math.Cos(x/5))
		o.Volume[i] = 1e5 + 1e4*math.Sin(x/3)
	}
	return o
}

func TestBuildCorrelation_MatrixShape(t *testing.T) {
	corr, err := BuildCorrelation(syntheticOHLCV(1500))
	require.NoError(t, err)

	p := len(corr.Variables)
	assert.Equal(t, 25, p)
	assert.Equal(t, "Return_1W", corr.Variables[0])
	assert.Contains(t, corr.Variables, "CMF20")
	assert.Contains(t, corr.Variables, "UltimateOsc")

	require.Len(t, corr.NormalMatrix, p)
	require.Len(t, corr.PartialMatrix, p)
	for i := 0; i < p; i++ {
		require.Len(t, corr.NormalMatrix[i], p)
		require.Len(t, corr.PartialMatrix[i], p)
		assert.InDelta(t, 1.0, corr.NormalMatrix[i][i], 1e-9)
		assert.Equal(t, 1.0, corr.PartialMatrix[i][i])
		for j := 0; j < p; j++ {
			assert.False(t, math.IsNaN(corr.NormalMatrix[i][j]))
			assert.False(t, math.IsNaN(corr.PartialMatrix[i][j]))
			assert.InDelta(t, corr.NormalMatrix[i][j], corr.NormalMatrix[j][i], 1e-9)
		}
	}
}

func TestBuildCorrelation_InsufficientData(t *testing.T) {
	_, err := BuildCorrelation(syntheticOHLCV(400))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestBuildCorrelationTable(t *testing.T) {
	table, err := BuildCorrelationTable(syntheticOHLCV(1500))
	require.NoError(t, err)

	assert.NotEmpty(t, table.Pairs)
	for _, pair := range table.Pairs {
		assert.NotZero(t, pair.Partial)
		assert.NotEqual(t, pair.Variable1, pair.Variable2)
	}

	assert.Len(t, table.Strongest, 25)
	for name, partner := range table.Strongest {
		assert.NotEqual(t, name, partner.Variable)
	}
}

func TestGraphicalLasso_DiagonalDominantInput(t *testing.T) {
	// Independent-ish variables: the precision should stay near diagonal and
	// expose almost no partial correlation.
	n := 400
	m := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		v := float64(i)
		m.SetRow(i, []float64{
			math.Sin(v / 3),
			math.Cos(v / 7.1),
			math.Sin(v/13.7 + 1),
		})
	}

	precision, err := graphicalLassoCV(m)
	require.NoError(t, err)

	r, c := precision.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	for i := 0; i < 3; i++ {
		assert.Greater(t, precision.At(i, i), 0.0)
		for j := 0; j < 3; j++ {
			assert.InDelta(t, precision.At(i, j), precision.At(j, i), 1e-9)
		}
	}
}

func TestSoftThreshold(t *testing.T) {
	assert.Equal(t, 2.0, softThreshold(3, 1))
	assert.Equal(t, -2.0, softThreshold(-3, 1))
	assert.Equal(t, 0.0, softThreshold(0.5, 1))
}

func TestQuantileLinear(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, quantileLinear(vals, 0))
	assert.Equal(t, 4.0, quantileLinear(vals, 1))
	assert.InDelta(t, 2.5, quantileLinear(vals, 0.5), 1e-9)
	assert.InDelta(t, 3.25, quantileLinear(vals, 0.75), 1e-9)
}
