package stats

// Combine merges the aggregations of two directions of the same
// connection into one. Buckets with the same key are unioned: counts add
// up and delay lists concatenate, a's values first. All distributions
// and the summary are recomputed from the raw delays, so the combined
// result is exactly what aggregating the union of both observation sets
// would have produced. The on-time threshold is taken from a.
func Combine(a, b Result) Result {
	hourDelays := make(map[int][]int)
	dayDelays := make(map[int][]int)
	for _, r := range []Result{a, b} {
		for _, bkt := range r.Hourly {
			hourDelays[bkt.Hour] = append(hourDelays[bkt.Hour], bkt.Delays...)
		}
		for _, bkt := range r.Daily {
			dayDelays[bkt.Day] = append(dayDelays[bkt.Day], bkt.Delays...)
		}
	}

	matrix := newMatrix()
	for _, r := range []Result{a, b} {
		for _, row := range r.Matrix {
			for _, cell := range row {
				if len(cell.delays) == 0 {
					continue
				}
				target := &matrix[cell.Day][cell.Hour]
				target.delays = append(target.delays, cell.delays...)
			}
		}
	}
	finalizeMatrix(matrix)

	var all []int
	for _, delays := range hourDelays {
		all = append(all, delays...)
	}

	return Result{
		Hourly:  hourlyBuckets(hourDelays),
		Daily:   dailyBuckets(dayDelays),
		Matrix:  matrix,
		Summary: summarize(all, a.Summary.OnTimeThreshold),
	}
}
