/*
Package stats summarizes the per-chunk timings of a batch run, so that load
imbalance between workers can be seen at a glance.
*/
package stats

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

/*
A Summary describes a set of durations.

Imbalance is Max divided by Mean. A perfectly balanced run has an
Imbalance of 1; a run where one worker did all the work across n
workers approaches n.
*/
type Summary struct {
	N         int
	Mean      time.Duration
	StdDev    time.Duration
	Min       time.Duration
	Max       time.Duration
	Imbalance float64
}

// Summarize computes a Summary of ds. It returns the zero Summary if ds is
// empty.
func Summarize(ds []time.Duration) Summary {
	if len(ds) == 0 {
		return Summary{}
	}
	x := make([]float64, len(ds))
	for i, d := range ds {
		x[i] = float64(d)
	}
	s := Summary{
		N:   len(ds),
		Min: time.Duration(floats.Min(x)),
		Max: time.Duration(floats.Max(x)),
	}
	if len(x) == 1 {
		s.Mean = time.Duration(x[0])
	} else {
		mean, std := stat.MeanStdDev(x, nil)
		s.Mean, s.StdDev = time.Duration(mean), time.Duration(std)
	}
	if s.Mean > 0 {
		s.Imbalance = float64(s.Max) / float64(s.Mean)
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d mean=%v stddev=%v min=%v max=%v imbalance=%.2f",
		s.N, s.Mean, s.StdDev, s.Min, s.Max, s.Imbalance)
}
