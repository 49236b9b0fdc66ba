package pool

import "runtime"

// MaxAutoConcurrency bounds auto-detected parallelism. The limit protects
// the external executor from resource contention; the work is not
// CPU-bound, so larger machines gain nothing past this point.
const MaxAutoConcurrency = 5

// AutoDetectConcurrency derives a worker count from the available hardware
// parallelism, always within [1, MaxAutoConcurrency].
func AutoDetectConcurrency() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > MaxAutoConcurrency {
		return MaxAutoConcurrency
	}
	return n
}

// ResolveConcurrency returns the effective worker count: an explicit
// positive value is used as-is, anything else falls back to auto-detection.
func ResolveConcurrency(explicit int) int {
	if explicit >= 1 {
		return explicit
	}
	return AutoDetectConcurrency()
}
