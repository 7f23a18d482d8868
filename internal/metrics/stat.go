package metrics

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the population variance, matching how the scores were tuned.
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	return math.Sqrt(variance(xs))
}

// priceVolatility is the coefficient of variation. Fewer than two samples
// count as perfectly stable.
func priceVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	return stddev(prices) / (mean(prices) + 1e-6)
}

// correlation computes the Pearson coefficient over the trailing window of
// both series. Degenerate inputs (short series, near-constant values)
// yield zero rather than NaN.
func correlation(a, b []float64, window int) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	n := min(len(a), len(b), window)
	s1 := a[len(a)-n:]
	s2 := b[len(b)-n:]
	if stddev(s1) < 1e-6 || stddev(s2) < 1e-6 {
		return 0
	}

	m1, m2 := mean(s1), mean(s2)
	var cov, v1, v2 float64
	for i := 0; i < n; i++ {
		d1 := s1[i] - m1
		d2 := s2[i] - m2
		cov += d1 * d2
		v1 += d1 * d1
		v2 += d2 * d2
	}
	denom := math.Sqrt(v1 * v2)
	if denom == 0 {
		return 0
	}
	corr := cov / denom
	if math.IsNaN(corr) {
		return 0
	}
	return corr
}

// synchronizedThrottling scores how uniformly firms are holding output
// below capacity over the trailing window. It fires only when every firm
// sits under 70% utilization with near-identical rates.
func synchronizedThrottling(production [][]float64, capacities []float64, window int) float64 {
	if len(production) == 0 || len(production[0]) < window {
		return 0
	}

	utils := make([]float64, len(production))
	for f, row := range production {
		var sum float64
		for t := len(row) - window; t < len(row); t++ {
			sum += row[t] / (capacities[f] + 1e-6)
		}
		utils[f] = sum / float64(window)
	}

	for _, u := range utils {
		if u >= 0.7 {
			return 0
		}
	}
	if variance(utils) >= 0.01 {
		return 0
	}
	return math.Min(1.0, (0.7-mean(utils))*2)
}

// columnTotals sums a firm-major matrix across firms, one total per period.
func columnTotals(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	totals := make([]float64, len(m[0]))
	for _, row := range m {
		for t, v := range row {
			totals[t] += v
		}
	}
	return totals
}

func flatten(m [][]float64) []float64 {
	var out []float64
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
