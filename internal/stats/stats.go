// Package stats aggregates observed departure delays into hourly, daily
// and day-by-hour distributions.
package stats

import (
	"math"
	"sort"
	"time"
)

// Observation is one departure with a known delay. Departures that never
// received a realtime update are not observations; callers must exclude
// them before aggregating.
type Observation struct {
	Planned time.Time
	Delay   int // minutes, negative when early
}

// Options control aggregation.
type Options struct {
	// OnTimeThreshold is the highest delay in minutes still counted as
	// on time. 0 counts only punctual trains, 3 is the common relaxed
	// reading.
	OnTimeThreshold int
}

// Distribution describes one bucket of delays. All fields are nil for an
// empty bucket since there is nothing to describe.
type Distribution struct {
	Min    *int     `json:"min"`
	Max    *int     `json:"max"`
	Median *int     `json:"median"`
	Mean   *float64 `json:"mean"`
}

// HourlyBucket holds the delays of all observations in one hour of day,
// in input order.
type HourlyBucket struct {
	Hour   int   `json:"hour"`
	Count  int   `json:"count"`
	Delays []int `json:"delays"`
}

// DailyBucket holds the delays of all observations on one day of week.
// Days are indexed Monday=0 through Sunday=6.
type DailyBucket struct {
	Day     int    `json:"day"`
	DayName string `json:"day_name"`
	Count   int    `json:"count"`
	Delays  []int  `json:"delays"`
}

// Cell is one day-of-week/hour-of-day slot of the delay matrix.
type Cell struct {
	Day   int `json:"day"`
	Hour  int `json:"hour"`
	Count int `json:"count"`
	Distribution

	delays []int // raw values, kept so results can be combined exactly
}

// Summary describes the full observation set.
type Summary struct {
	Count           int      `json:"count"`
	AvgDelay        *float64 `json:"avg_delay"`
	MaxDelay        *int     `json:"max_delay"`
	MedianDelay     *int     `json:"median_delay"`
	OnTimeRate      *float64 `json:"ontime_rate"`
	OnTimeThreshold int      `json:"ontime_threshold"`
}

// Result is the aggregation of one observation set. Hourly and Daily are
// sparse and only hold buckets with at least one observation; Matrix is
// always dense with 7 days times 24 hours.
type Result struct {
	Hourly  []HourlyBucket `json:"hourly_stats"`
	Daily   []DailyBucket  `json:"daily_stats"`
	Matrix  [][]Cell       `json:"day_hour_stats"`
	Summary Summary        `json:"summary"`
}

var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayName returns the English name for a Monday=0 day index.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return dayNames[day]
}

// dayIndex maps time.Weekday (Sunday=0) onto Monday=0.
func dayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// Aggregate buckets observations by hour of day and day of week. An
// empty input yields empty bucket lists and an all-null summary rather
// than an error; no data is an answer, not a failure.
func Aggregate(observations []Observation, opts Options) Result {
	hourDelays := make(map[int][]int)
	dayDelays := make(map[int][]int)
	matrix := newMatrix()
	all := make([]int, 0, len(observations))

	for _, o := range observations {
		hour := o.Planned.Hour()
		day := dayIndex(o.Planned.Weekday())
		hourDelays[hour] = append(hourDelays[hour], o.Delay)
		dayDelays[day] = append(dayDelays[day], o.Delay)
		matrix[day][hour].delays = append(matrix[day][hour].delays, o.Delay)
		all = append(all, o.Delay)
	}

	finalizeMatrix(matrix)
	return Result{
		Hourly:  hourlyBuckets(hourDelays),
		Daily:   dailyBuckets(dayDelays),
		Matrix:  matrix,
		Summary: summarize(all, opts.OnTimeThreshold),
	}
}

// Describe computes the distribution of a delay list. The median of an
// even-sized list is the element at index len/2 of the sorted values.
func Describe(delays []int) Distribution {
	if len(delays) == 0 {
		return Distribution{}
	}
	sorted := append([]int(nil), delays...)
	sort.Ints(sorted)

	var sum int
	for _, v := range sorted {
		sum += v
	}
	lowest := sorted[0]
	highest := sorted[len(sorted)-1]
	median := sorted[len(sorted)/2]
	mean := float64(sum) / float64(len(sorted))
	return Distribution{Min: &lowest, Max: &highest, Median: &median, Mean: &mean}
}

func summarize(all []int, threshold int) Summary {
	s := Summary{Count: len(all), OnTimeThreshold: threshold}
	if len(all) == 0 {
		return s
	}
	dist := Describe(all)
	avg := round2(*dist.Mean)
	s.AvgDelay = &avg
	s.MaxDelay = dist.Max
	s.MedianDelay = dist.Median

	onTime := 0
	for _, v := range all {
		if v <= threshold {
			onTime++
		}
	}
	rate := float64(onTime) / float64(len(all))
	s.OnTimeRate = &rate
	return s
}

func hourlyBuckets(hourDelays map[int][]int) []HourlyBucket {
	hours := make([]int, 0, len(hourDelays))
	for h := range hourDelays {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	buckets := make([]HourlyBucket, 0, len(hours))
	for _, h := range hours {
		buckets = append(buckets, HourlyBucket{
			Hour:   h,
			Count:  len(hourDelays[h]),
			Delays: hourDelays[h],
		})
	}
	return buckets
}

func dailyBuckets(dayDelays map[int][]int) []DailyBucket {
	days := make([]int, 0, len(dayDelays))
	for d := range dayDelays {
		days = append(days, d)
	}
	sort.Ints(days)

	buckets := make([]DailyBucket, 0, len(days))
	for _, d := range days {
		buckets = append(buckets, DailyBucket{
			Day:     d,
			DayName: dayNames[d],
			Count:   len(dayDelays[d]),
			Delays:  dayDelays[d],
		})
	}
	return buckets
}

func newMatrix() [][]Cell {
	matrix := make([][]Cell, 7)
	for d := range matrix {
		matrix[d] = make([]Cell, 24)
	}
	return matrix
}

func finalizeMatrix(matrix [][]Cell) {
	for d := range matrix {
		for h := range matrix[d] {
			cell := &matrix[d][h]
			cell.Day = d
			cell.Hour = h
			cell.Count = len(cell.delays)
			cell.Distribution = Describe(cell.delays)
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
