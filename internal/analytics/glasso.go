package analytics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	glassoMaxIter = 100
	glassoTol     = 1e-4
	glassoCVFolds = 5
	glassoAlphas  = 10
)

var errGlassoDiverged = errors.New("graphical lasso did not produce a positive-definite precision")

// graphicalLassoCV selects the l1 penalty by k-fold cross validation over a
// log-spaced grid anchored at the largest absolute off-diagonal covariance,
// scoring each candidate by held-out Gaussian log-likelihood, then refits on
// the full sample.
func graphicalLassoCV(x *mat.Dense) (*mat.Dense, error) {
	n, p := x.Dims()
	if n < p+1 {
		return nil, errors.New("too few rows for covariance estimation")
	}

	full := covarianceOf(x)
	alphaMax := 0.0
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			if v := math.Abs(full.At(i, j)); v > alphaMax {
				alphaMax = v
			}
		}
	}
	if alphaMax == 0 {
		alphaMax = 1
	}

	alphas := logSpace(alphaMax*0.01, alphaMax, glassoAlphas)
	folds := splitFolds(n, glassoCVFolds)

	bestAlpha := alphas[0]
	bestScore := math.Inf(-1)
	for _, alpha := range alphas {
		score := 0.0
		valid := 0
		for _, fold := range folds {
			train := rowSubset(x, fold, false)
			test := rowSubset(x, fold, true)
			tr, _ := train.Dims()
			te, _ := test.Dims()
			if tr < p+1 || te < 2 {
				continue
			}
			precision, err := graphicalLasso(covarianceOf(train), alpha)
			if err != nil {
				continue
			}
			ll, ok := gaussianLogLik(covarianceOf(test), precision)
			if !ok {
				continue
			}
			score += ll
			valid++
		}
		if valid == len(folds) && score > bestScore {
			bestScore = score
			bestAlpha = alpha
		}
	}

	precision, err := graphicalLasso(full, bestAlpha)
	if err == nil {
		return precision, nil
	}
	// The grid minimum can be too light for ill-conditioned samples; the
	// heaviest penalty always shrinks to a diagonal-dominant solution.
	return graphicalLasso(full, alphaMax)
}

// graphicalLasso runs block coordinate descent over the covariance estimate,
// solving an l1-penalized regression per column, and recovers the precision
// matrix from the final regression coefficients.
func graphicalLasso(emp *mat.SymDense, alpha float64) (*mat.Dense, error) {
	p := emp.SymmetricDim()

	s := make([][]float64, p)
	w := make([][]float64, p)
	for i := 0; i < p; i++ {
		s[i] = make([]float64, p)
		w[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			s[i][j] = emp.At(i, j)
			w[i][j] = emp.At(i, j)
		}
		w[i][i] += alpha
	}

	betas := make([][]float64, p)
	for j := range betas {
		betas[j] = make([]float64, p-1)
	}

	for iter := 0; iter < glassoMaxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			idx := othersOf(j, p)
			beta := betas[j]

			// Coordinate descent on the column sub-problem.
			for sweep := 0; sweep < glassoMaxIter; sweep++ {
				delta := 0.0
				for k, row := range idx {
					r := s[idx[k]][j]
					for l, col := range idx {
						if l == k {
							continue
						}
						r -= w[row][col] * beta[l]
					}
					updated := softThreshold(r, alpha) / w[row][row]
					if d := math.Abs(updated - beta[k]); d > delta {
						delta = d
					}
					beta[k] = updated
				}
				if delta < glassoTol {
					break
				}
			}

			for _, row := range idx {
				v := 0.0
				for l, col := range idx {
					v += w[row][col] * beta[l]
				}
				if d := math.Abs(v - w[row][j]); d > maxDelta {
					maxDelta = d
				}
				w[row][j] = v
				w[j][row] = v
			}
		}
		if maxDelta < glassoTol {
			break
		}
	}

	precision := mat.NewDense(p, p, nil)
	for j := 0; j < p; j++ {
		idx := othersOf(j, p)
		dot := 0.0
		for k, row := range idx {
			dot += w[row][j] * betas[j][k]
		}
		denom := w[j][j] - dot
		if denom <= 0 || math.IsNaN(denom) {
			return nil, errGlassoDiverged
		}
		thetaJJ := 1 / denom
		precision.Set(j, j, thetaJJ)
		for k, row := range idx {
			precision.Set(row, j, -betas[j][k]*thetaJJ)
		}
	}

	// Symmetrize; the per-column recovery is only symmetric at convergence.
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			v := (precision.At(i, j) + precision.At(j, i)) / 2
			precision.Set(i, j, v)
			precision.Set(j, i, v)
		}
	}
	for i := 0; i < p; i++ {
		if precision.At(i, i) <= 0 {
			return nil, errGlassoDiverged
		}
	}
	return precision, nil
}

// gaussianLogLik scores a precision estimate against a held-out covariance:
// logdet(P) - tr(S P).
func gaussianLogLik(s *mat.SymDense, precision *mat.Dense) (float64, bool) {
	logDet, sign := mat.LogDet(precision)
	if sign <= 0 || math.IsNaN(logDet) || math.IsInf(logDet, 0) {
		return 0, false
	}
	p := s.SymmetricDim()
	trace := 0.0
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			trace += s.At(i, j) * precision.At(j, i)
		}
	}
	return logDet - trace, true
}

func covarianceOf(x *mat.Dense) *mat.SymDense {
	_, p := x.Dims()
	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, x, nil)
	return cov
}

// rowSubset copies either the rows inside the fold (take=true) or the rows
// outside it.
func rowSubset(x *mat.Dense, fold [2]int, take bool) *mat.Dense {
	n, p := x.Dims()
	var rows []int
	for i := 0; i < n; i++ {
		in := i >= fold[0] && i < fold[1]
		if in == take {
			rows = append(rows, i)
		}
	}
	out := mat.NewDense(len(rows), p, nil)
	buf := make([]float64, p)
	for i, r := range rows {
		mat.Row(buf, r, x)
		out.SetRow(i, buf)
	}
	return out
}

func splitFolds(n, k int) [][2]int {
	folds := make([][2]int, 0, k)
	size := n / k
	start := 0
	for i := 0; i < k; i++ {
		end := start + size
		if i == k-1 {
			end = n
		}
		folds = append(folds, [2]int{start, end})
		start = end
	}
	return folds
}

func logSpace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	logLo := math.Log(lo)
	logHi := math.Log(hi)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		out[i] = math.Exp(logLo + t*(logHi-logLo))
	}
	return out
}

func othersOf(j, p int) []int {
	out := make([]int, 0, p-1)
	for i := 0; i < p; i++ {
		if i != j {
			out = append(out, i)
		}
	}
	return out
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}
