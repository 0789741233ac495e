// api/engine/window.go
package engine

// Ordered-series helpers for the rolling and lag statistics of the
// date-indexed rollups. All of them are single-pass sliding accumulators
// over an already ordered sequence; callers must not split a partition
// (category, or the global date axis) across calls.

// rollingSum returns the trailing sum over the current element and the
// window-1 preceding ones, using however many exist at the start of the
// series.
func rollingSum(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	var sum float64
	for i, v := range vals {
		sum += v
		if i >= window {
			sum -= vals[i-window]
		}
		out[i] = sum
	}
	return out
}

// rollingMean returns the trailing mean over the current element and the
// window-1 preceding ones, shrinking the divisor at the series start
// instead of padding.
func rollingMean(vals []float64, window int) []float64 {
	out := rollingSum(vals, window)
	for i := range out {
		n := window
		if i+1 < window {
			n = i + 1
		}
		out[i] /= float64(n)
	}
	return out
}

// cumulativeSum returns the unbounded running sum from the series start.
func cumulativeSum(vals []float64) []float64 {
	out := make([]float64, len(vals))
	var sum float64
	for i, v := range vals {
		sum += v
		out[i] = sum
	}
	return out
}

// lag returns the value offset periods back, or 0 where the series has
// not run long enough.
func lag(vals []float64, offset int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i >= offset {
			out[i] = vals[i-offset]
		}
	}
	return out
}

// pctChange returns the fractional change against the value offset
// periods back. Where the prior value is absent or not positive the
// change is defined as 0, never NaN or infinity.
func pctChange(vals []float64, offset int) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if i < offset {
			continue
		}
		prior := vals[i-offset]
		if prior <= 0 {
			continue
		}
		out[i] = (v - prior) / prior
	}
	return out
}
