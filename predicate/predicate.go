// Package predicate provides the per-item evaluators used by batch
// evaluation: a deliberately naive trial-division primality test, and a
// variant that calls back into a scheduler at fixed intervals so that it
// can run inside a cooperative task without starving its siblings.
//
// Evaluation cost grows linearly with the item value, which is what makes
// the partitioning and load-balancing choices elsewhere in this module
// observable.
package predicate

// Func evaluates a single item. Implementations must be pure, so that they
// can be called from any number of goroutines at once.
type Func func(item int) bool

// A Verdict is the result of evaluating one item.
type Verdict struct {
	Item  int
	Prime bool
}

// DefaultYieldEvery is the number of inner-loop iterations between two
// calls to the yield function in IsPrimeYield when every is 0.
const DefaultYieldEvery = 1000

// IsPrime reports whether n is prime by testing every divisor in [2, n).
func IsPrime(n int) bool {
	if n <= 1 {
		return false
	}
	for div := 2; div < n; div++ {
		if n%div == 0 {
			return false
		}
	}
	return true
}

// IsPrimeYield is IsPrime with a cooperative scheduling hook: yield is
// called whenever the current divisor is a multiple of every. If yield
// returns an error, evaluation stops and the error is returned.
//
// If every is 0, DefaultYieldEvery is used. A nil yield never suspends.
func IsPrimeYield(n, every int, yield func() error) (bool, error) {
	if n <= 1 {
		return false, nil
	}
	if every <= 0 {
		every = DefaultYieldEvery
	}
	for div := 2; div < n; div++ {
		if n%div == 0 {
			return false, nil
		}
		if yield != nil && div%every == 0 {
			if err := yield(); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// Evaluate applies f to item.
func Evaluate(f Func, item int) Verdict {
	return Verdict{Item: item, Prime: f(item)}
}
