package iris

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// DirectDepartures fetches all departures from origin between from and to
// that run directly to dest, with realtime changes merged in. The plan
// endpoint serves fixed hour blocks, so every block touching the window
// is fetched and the result filtered back down to [from, to].
func (c *Client) DirectDepartures(ctx context.Context, origin, dest Station, from, to time.Time) ([]Departure, error) {
	tz := Timezone()
	local := from.In(tz)
	block := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, tz)

	var all []Departure
	for ; !block.After(to); block = block.Add(time.Hour) {
		departures, err := c.PlanHour(ctx, origin.EVA, block)
		if err != nil {
			return nil, fmt.Errorf("plan %s %s: %w", origin.EVA, block.Format("06010215"), err)
		}
		all = append(all, departures...)
	}

	direct := make([]Departure, 0, len(all))
	for _, d := range all {
		if d.Planned.Before(from) || d.Planned.After(to) {
			continue
		}
		if !matchesDestination(d.Path, dest.Name) {
			continue
		}
		direct = append(direct, d)
	}
	if len(direct) == 0 {
		return nil, nil
	}

	changes, err := c.Changes(ctx, origin.EVA)
	if err != nil {
		return nil, fmt.Errorf("changes %s: %w", origin.EVA, err)
	}
	mergeChanges(direct, changes)

	sort.Slice(direct, func(i, j int) bool {
		return direct[i].EffectiveTime().Before(direct[j].EffectiveTime())
	})
	return direct, nil
}

func departuresFromPlan(tt timetableXML, logger *slog.Logger) []Departure {
	departures := make([]Departure, 0, len(tt.Services))
	for _, svc := range tt.Services {
		dp := svc.Departure
		if dp == nil {
			continue
		}
		planned, err := parseTimetableTime(dp.PlannedTime)
		if err != nil {
			logger.Debug("skipping service with bad planned time",
				"service", svc.ID, "pt", dp.PlannedTime)
			continue
		}
		d := Departure{
			ServiceID:       svc.ID,
			Planned:         planned,
			PlannedPlatform: dp.PlannedPlatform,
			Path:            splitPath(dp.PlannedPath),
		}
		if svc.TripLabel != nil {
			d.Category = svc.TripLabel.Category
			d.Number = svc.TripLabel.Number
		}
		departures = append(departures, d)
	}
	return departures
}

func changesFromTimetable(tt timetableXML) []Change {
	changes := make([]Change, 0, len(tt.Services))
	for _, svc := range tt.Services {
		dp := svc.Departure
		if dp == nil {
			continue
		}
		ch := Change{
			ServiceID: svc.ID,
			Platform:  dp.ChangedPlatform,
			Status:    dp.Status,
		}
		if dp.ChangedTime != "" {
			if t, err := parseTimetableTime(dp.ChangedTime); err == nil {
				ch.Realtime = t
			}
		}
		if ch.Realtime.IsZero() && ch.Platform == "" && ch.Status == "" {
			continue
		}
		changes = append(changes, ch)
	}
	return changes
}

// mergeChanges applies realtime changes onto planned departures,
// matching by service id.
func mergeChanges(departures []Departure, changes []Change) {
	if len(changes) == 0 {
		return
	}
	byService := make(map[string]Change, len(changes))
	for _, ch := range changes {
		byService[ch.ServiceID] = ch
	}
	for i := range departures {
		ch, ok := byService[departures[i].ServiceID]
		if !ok {
			continue
		}
		if !ch.Realtime.IsZero() {
			departures[i].Realtime = ch.Realtime
		}
		if ch.Platform != "" {
			departures[i].RealtimePlatform = ch.Platform
		}
		if ch.Status != "" {
			departures[i].Status = ch.Status
		}
	}
}

func splitPath(ppth string) []string {
	if ppth == "" {
		return nil
	}
	parts := strings.Split(ppth, ";")
	path := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			path = append(path, p)
		}
	}
	return path
}

// matchesDestination reports whether any stop on the path is the given
// destination. Station names vary between feeds ("München Hbf" vs
// "München Hbf (tief)"), so matching is fuzzy: exact, containment in
// either direction, or a shared base name with suffixes stripped.
func matchesDestination(path []string, destName string) bool {
	dest := strings.ToUpper(strings.TrimSpace(destName))
	if dest == "" {
		return false
	}
	base := baseName(dest)
	for _, stop := range path {
		s := strings.ToUpper(strings.TrimSpace(stop))
		if s == "" {
			continue
		}
		if s == dest || strings.Contains(s, dest) || strings.Contains(dest, s) {
			return true
		}
		if base != "" && strings.HasPrefix(s, base) {
			return true
		}
	}
	return false
}

// baseName strips common station name suffixes for prefix matching.
func baseName(name string) string {
	name = strings.TrimSuffix(name, " HBF")
	if i := strings.Index(name, " ("); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
