package stats

import (
	"fmt"
	"math"
	"sort"
)

// Descriptive summarizes one sample of returns.
type Descriptive struct {
	N           int     `json:"n"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	StdDev      float64 `json:"std_dev"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	PctNegative float64 `json:"pct_negative"`
	PctPositive float64 `json:"pct_positive"`
}

// Describe computes descriptive statistics over a sample. The standard
// deviation uses the n-1 (sample) denominator and is zero for n < 2.
func Describe(xs []float64) Descriptive {
	d := Descriptive{N: len(xs)}
	if len(xs) == 0 {
		return d
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]

	sum := 0.0
	neg, pos := 0, 0
	for _, x := range xs {
		sum += x
		if x < 0 {
			neg++
		} else if x > 0 {
			pos++
		}
	}
	d.Mean = sum / float64(len(xs))
	d.PctNegative = float64(neg) / float64(len(xs)) * 100
	d.PctPositive = float64(pos) / float64(len(xs)) * 100

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		d.Median = sorted[mid]
	} else {
		d.Median = (sorted[mid-1] + sorted[mid]) / 2
	}

	if len(xs) >= 2 {
		ss := 0.0
		for _, x := range xs {
			diff := x - d.Mean
			ss += diff * diff
		}
		d.StdDev = math.Sqrt(ss / float64(len(xs)-1))
	}
	return d
}

// TTestResult holds a t statistic with its two-sided p-value and the
// one-sided p-value for the "less than" alternative.
type TTestResult struct {
	T            float64 `json:"t"`
	DF           float64 `json:"df"`
	PTwoSided    float64 `json:"p_two_sided"`
	POneSidedLow float64 `json:"p_one_sided_low"` // H1: mean (difference) < 0
}

// Significant reports whether the two-sided p-value clears alpha.
func (r TTestResult) Significant(alpha float64) bool {
	return r.PTwoSided < alpha
}

// OneSampleT tests H0: mean(xs) == mu0. At least 3 observations are
// required; smaller samples return an error rather than a misleading
// statistic.
func OneSampleT(xs []float64, mu0 float64) (TTestResult, error) {
	if len(xs) < 3 {
		return TTestResult{}, fmt.Errorf("one-sample t test needs at least 3 observations, got %d", len(xs))
	}
	d := Describe(xs)
	if d.StdDev == 0 {
		return TTestResult{}, fmt.Errorf("one-sample t test undefined for zero variance")
	}

	n := float64(len(xs))
	t := (d.Mean - mu0) / (d.StdDev / math.Sqrt(n))
	df := n - 1
	return makeResult(t, df), nil
}

// TwoSampleT runs Welch's unequal-variance t test on two independent
// samples, H0: mean(xs) == mean(ys). Both samples need at least 3
// observations.
func TwoSampleT(xs, ys []float64) (TTestResult, error) {
	if len(xs) < 3 || len(ys) < 3 {
		return TTestResult{}, fmt.Errorf("two-sample t test needs at least 3 observations per group, got %d and %d", len(xs), len(ys))
	}
	dx := Describe(xs)
	dy := Describe(ys)

	nx := float64(len(xs))
	ny := float64(len(ys))
	vx := dx.StdDev * dx.StdDev / nx
	vy := dy.StdDev * dy.StdDev / ny
	se2 := vx + vy
	if se2 == 0 {
		return TTestResult{}, fmt.Errorf("two-sample t test undefined for zero variance")
	}

	t := (dx.Mean - dy.Mean) / math.Sqrt(se2)
	// Welch-Satterthwaite degrees of freedom.
	df := se2 * se2 / (vx*vx/(nx-1) + vy*vy/(ny-1))
	return makeResult(t, df), nil
}

func makeResult(t, df float64) TTestResult {
	p2 := twoSidedP(t, df)
	r := TTestResult{T: t, DF: df, PTwoSided: p2}
	if t < 0 {
		r.POneSidedLow = p2 / 2
	} else {
		r.POneSidedLow = 1 - p2/2
	}
	return r
}

// twoSidedP computes P(|T| >= |t|) for a Student-t variable with df
// degrees of freedom via the regularized incomplete beta function.
func twoSidedP(t, df float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	x := df / (df + t*t)
	return regIncBeta(df/2, 0.5, x)
}

// regIncBeta is the regularized incomplete beta function I_x(a, b),
// evaluated with the continued-fraction expansion (Numerical Recipes
// betacf), which converges quickly for the arguments seen here.
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lnFront := lgamma(a+b) - lgamma(a) - lgamma(b) + a*math.Log(x) + b*math.Log(1-x)
	front := math.Exp(lnFront)

	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		fpmin   = 1e-300
	)

	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpmin {
		d = fpmin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		mf := float64(m)
		m2 := 2 * mf

		aa := mf * (b - mf) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + mf) * (qab + mf) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
