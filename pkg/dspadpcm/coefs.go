// ABOUTME: Coefficient table search for DSP-ADPCM
// ABOUTME: Order-2 linear prediction split into eight refined predictors
package dspadpcm

import (
	"fmt"
	"math"
)

const (
	predictorOrder = 2
	predictorCount = 8
	reflectionMax  = 0.9999999999
)

// CoefficientSettings tunes the coefficient search
type CoefficientSettings struct {
	// FrameSamples is the analysis window length
	FrameSamples int
	// Threshold is the minimum frame energy for a frame to take part
	Threshold float64
	// RefineIterations is the number of clustering passes after each split
	RefineIterations int
}

// DefaultCoefficientSettings analyses one frame at a time, skips frames with
// energy below 10 and runs two refinement passes per split.
func DefaultCoefficientSettings() CoefficientSettings {
	return CoefficientSettings{
		FrameSamples:     SamplesPerFrame,
		Threshold:        10,
		RefineIterations: 2,
	}
}

func acVect(input []float64, frameSize int, out []float64) {
	for i := 0; i <= predictorOrder; i++ {
		out[i] = 0
		for j := 0; j < frameSize; j++ {
			out[i] -= input[frameSize+j-i] * input[frameSize+j]
		}
	}
}

func acMat(input []float64, frameSize int, out [][]float64) {
	for i := 1; i <= predictorOrder; i++ {
		for j := 1; j <= predictorOrder; j++ {
			out[i][j] = 0
			for k := 0; k < frameSize; k++ {
				out[i][j] += input[frameSize+k-i] * input[frameSize+k-j]
			}
		}
	}
}

// luDecomp factors a in place (1-based). It reports true when the matrix is
// singular or too badly conditioned to solve.
func luDecomp(a [][]float64, n int, indx []int) bool {
	vv := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		big := 0.0
		for j := 1; j <= n; j++ {
			big = math.Max(big, math.Abs(a[i][j]))
		}
		if big == 0 {
			return true
		}
		vv[i] = 1 / big
	}

	for j := 1; j <= n; j++ {
		for i := 1; i < j; i++ {
			sum := a[i][j]
			for k := 1; k < i; k++ {
				sum -= a[i][k] * a[k][j]
			}
			a[i][j] = sum
		}

		big := 0.0
		imax := j
		for i := j; i <= n; i++ {
			sum := a[i][j]
			for k := 1; k < j; k++ {
				sum -= a[i][k] * a[k][j]
			}
			a[i][j] = sum
			if dum := vv[i] * math.Abs(sum); dum >= big {
				big = dum
				imax = i
			}
		}

		if j != imax {
			a[imax], a[j] = a[j], a[imax]
			vv[imax] = vv[j]
		}
		indx[j] = imax
		if a[j][j] == 0 {
			return true
		}

		if j != n {
			dum := 1 / a[j][j]
			for i := j + 1; i <= n; i++ {
				a[i][j] *= dum
			}
		}
	}

	lo, hi := 1e10, 0.0
	for i := 1; i <= n; i++ {
		v := math.Abs(a[i][i])
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo/hi < 1e-10
}

func luDecompBackSub(a [][]float64, n int, indx []int, b []float64) {
	ii := 0
	for i := 1; i <= n; i++ {
		ip := indx[i]
		sum := b[ip]
		b[ip] = b[i]
		if ii != 0 {
			for j := ii; j <= i-1; j++ {
				sum -= a[i][j] * b[j]
			}
		} else if sum != 0 {
			ii = i
		}
		b[i] = sum
	}
	for i := n; i >= 1; i-- {
		sum := b[i]
		for j := i + 1; j <= n; j++ {
			sum -= a[i][j] * b[j]
		}
		b[i] = sum / a[i][i]
	}
}

// afromk converts reflection coefficients to predictor coefficients
func afromk(in, out []float64, n int) {
	out[0] = 1
	for i := 1; i <= n; i++ {
		out[i] = in[i]
		for j := 1; j <= i-1; j++ {
			out[j] += out[i-j] * out[i]
		}
	}
}

// kfroma converts predictor coefficients to reflection coefficients and
// returns how many of them are unstable (|k| > 1). in is overwritten.
func kfroma(in, out []float64, n int) int {
	unstable := 0
	next := make([]float64, n+1)

	out[n] = in[n]
	for i := n - 1; i >= 1; i-- {
		for j := 0; j <= i; j++ {
			temp := out[i+1]
			div := 1 - temp*temp
			if div == 0 {
				return 1
			}
			next[j] = (in[j] - in[i+1-j]*temp) / div
		}
		copy(in[:i+1], next[:i+1])

		out[i] = next[i]
		if math.Abs(out[i]) > 1 {
			unstable++
		}
	}
	return unstable
}

// rfroma derives the normalized autocorrelation of a predictor
func rfroma(in []float64, n int, out []float64) {
	mat := make([][]float64, n+1)
	mat[n] = make([]float64, n+1)
	mat[n][0] = 1
	for i := 1; i <= n; i++ {
		mat[n][i] = -in[i]
	}

	for i := n; i >= 1; i-- {
		mat[i-1] = make([]float64, i)
		div := 1 - mat[i][i]*mat[i][i]
		for j := 1; j <= i-1; j++ {
			mat[i-1][j] = (mat[i][i-j]*mat[i][i] + mat[i][j]) / div
		}
	}

	out[0] = 1
	for i := 1; i <= n; i++ {
		out[i] = 0
		for j := 1; j <= i; j++ {
			out[i] += mat[i][j] * out[i-j]
		}
	}
}

// durbin runs the Levinson-Durbin recursion on autocorrelation r, writing
// reflection coefficients to k and predictor coefficients to a.
func durbin(r []float64, n int, k, a []float64) int {
	unstable := 0
	a[0] = 1
	div := r[0]

	for i := 1; i <= n; i++ {
		sum := 0.0
		for j := 1; j <= i-1; j++ {
			sum += a[j] * r[i-j]
		}

		if div > 0 {
			a[i] = -(r[i] + sum) / div
		} else {
			a[i] = 0
		}
		k[i] = a[i]

		if math.Abs(k[i]) > 1 {
			unstable++
		}

		for j := 1; j < i; j++ {
			a[j] += a[i-j] * a[i]
		}

		div *= 1 - a[i]*a[i]
	}
	return unstable
}

func clampReflection(k []float64) {
	for i := 1; i <= predictorOrder; i++ {
		if k[i] >= 1 {
			k[i] = reflectionMax
		}
		if k[i] <= -1 {
			k[i] = -reflectionMax
		}
	}
}

func split(table [][]float64, delta []float64, n int, scale float64) {
	for i := 0; i < n; i++ {
		for j := 0; j <= predictorOrder; j++ {
			table[i+n][j] = table[i][j] + delta[j]*scale
		}
	}
}

func modelDist(predictor, record []float64) float64 {
	r := make([]float64, predictorOrder+1)
	rfroma(record, predictorOrder, r)

	var ac [predictorOrder + 1]float64
	for i := 0; i <= predictorOrder; i++ {
		for j := 0; j <= predictorOrder-i; j++ {
			ac[i] += predictor[j] * predictor[i+j]
		}
	}

	dist := ac[0] * r[0]
	for i := 1; i <= predictorOrder; i++ {
		dist += 2 * r[i] * ac[i]
	}
	return dist
}

// refine reassigns each record to its nearest predictor and rebuilds every
// predictor from the mean autocorrelation of its records.
func refine(table [][]float64, n int, records [][]float64, iterations int) {
	sums := make([][]float64, n)
	for i := range sums {
		sums[i] = make([]float64, predictorOrder+1)
	}
	counts := make([]float64, n)
	tmp := make([]float64, predictorOrder+1)

	for iter := 0; iter < iterations; iter++ {
		for i := 0; i < n; i++ {
			counts[i] = 0
			clear(sums[i])
		}

		for _, record := range records {
			best := 0
			bestDist := 1e30
			for j := 0; j < n; j++ {
				if d := modelDist(table[j], record); d < bestDist {
					bestDist = d
					best = j
				}
			}

			counts[best]++
			rfroma(record, predictorOrder, tmp)
			for j := 0; j <= predictorOrder; j++ {
				sums[best][j] += tmp[j]
			}
		}

		for i := 0; i < n; i++ {
			if counts[i] > 0 {
				for j := 0; j <= predictorOrder; j++ {
					sums[i][j] /= counts[i]
				}
			}
		}

		for i := 0; i < n; i++ {
			durbin(sums[i], predictorOrder, tmp, table[i])
			clampReflection(tmp)
			afromk(tmp, table[i], predictorOrder)
		}
	}
}

// quantizeCoefficient converts a predictor term to 4.11 fixed point,
// clamping to int16. The second result reports whether it had to clamp.
func quantizeCoefficient(v float64) (int16, bool) {
	d := -v * 2048
	if math.IsNaN(d) {
		return 0, false
	}
	if d > math.MaxInt16 {
		return math.MaxInt16, true
	}
	if d < math.MinInt16 {
		return math.MinInt16, true
	}
	return int16(math.Round(d)), false
}

// CalculateCoefficients derives a coefficient table from samples. Frames
// quieter than the threshold are ignored; silence yields an all-zero table.
// When a coefficient had to be clamped the table is still returned together
// with an error wrapping ErrCoefficientOverflow.
func CalculateCoefficients(samples []int16, settings CoefficientSettings) (Coefficients, error) {
	var coefs Coefficients

	frameSize := settings.FrameSamples
	if frameSize <= 0 {
		frameSize = SamplesPerFrame
	}

	vec := make([]float64, predictorOrder+1)
	refl := make([]float64, predictorOrder+1)
	mat := make([][]float64, predictorOrder+1)
	for i := range mat {
		mat[i] = make([]float64, predictorOrder+1)
	}
	perm := make([]int, predictorOrder+1)

	var records [][]float64
	window := make([]float64, frameSize*2)

	for start := 0; start < len(samples); start += frameSize {
		for i := 0; i < frameSize; i++ {
			v := 0.0
			if start+i < len(samples) {
				v = float64(samples[start+i])
			}
			window[frameSize+i] = v
		}

		acVect(window, frameSize, vec)
		if math.Abs(vec[0]) > settings.Threshold {
			acMat(window, frameSize, mat)
			if !luDecomp(mat, predictorOrder, perm) {
				luDecompBackSub(mat, predictorOrder, perm, vec)
				vec[0] = 1
				if kfroma(vec, refl, predictorOrder) == 0 {
					record := make([]float64, predictorOrder+1)
					clampReflection(refl)
					afromk(refl, record, predictorOrder)
					records = append(records, record)
				}
			}
		}

		copy(window[:frameSize], window[frameSize:])
	}

	if len(records) == 0 {
		return coefs, nil
	}

	// Mean autocorrelation over all records seeds the first predictor.
	table := make([][]float64, predictorCount)
	for i := range table {
		table[i] = make([]float64, predictorOrder+1)
	}

	vec[0] = 1
	for j := 1; j <= predictorOrder; j++ {
		vec[j] = 0
	}
	for _, record := range records {
		rfroma(record, predictorOrder, table[0])
		for j := 1; j <= predictorOrder; j++ {
			vec[j] += table[0][j]
		}
	}
	for j := 1; j <= predictorOrder; j++ {
		vec[j] /= float64(len(records))
	}

	durbin(vec, predictorOrder, refl, table[0])
	clampReflection(refl)
	afromk(refl, table[0], predictorOrder)

	delta := make([]float64, predictorOrder+1)
	delta[predictorOrder-1] = -1
	for n := 1; n < predictorCount; n *= 2 {
		split(table, delta, n, 0.01)
		refine(table, n*2, records, settings.RefineIterations)
	}

	overflows := 0
	for i := 0; i < predictorCount; i++ {
		for j := 0; j < 2; j++ {
			v, clamped := quantizeCoefficient(table[i][j+1])
			if clamped {
				overflows++
			}
			coefs[i][j] = v
		}
	}

	if overflows > 0 {
		return coefs, fmt.Errorf("%w: %d values clamped", ErrCoefficientOverflow, overflows)
	}
	return coefs, nil
}
