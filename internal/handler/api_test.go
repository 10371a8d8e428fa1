package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dblive/internal/config"
	"dblive/internal/iris"
	"dblive/internal/poller"
	"dblive/internal/route"
	"dblive/internal/server"
	"dblive/internal/storage"
)

type fakeResolver struct {
	stations map[string]iris.Station
}

func (f *fakeResolver) Resolve(ctx context.Context, name string) (iris.Station, error) {
	if s, ok := f.stations[name]; ok {
		return s, nil
	}
	return iris.Station{}, iris.ErrStationNotFound
}

type fakeSource struct {
	departures []iris.Departure
	delay      time.Duration
	inFlight   int32
}

func (f *fakeSource) DirectDepartures(ctx context.Context, origin, dest iris.Station, from, to time.Time) ([]iris.Departure, error) {
	atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.departures, nil
}

type apiTest struct {
	db     *storage.DB
	source *fakeSource
	http   http.Handler
	tz     *time.Location
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()
	tz := iris.Timezone()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), tz, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	source := &fakeSource{}
	resolver := &fakeResolver{stations: map[string]iris.Station{
		"Augsburg Hbf": {Name: "Augsburg Hbf", EVA: "8000013"},
		"München Hbf":  {Name: "München Hbf", EVA: "8000261"},
	}}
	runner := poller.NewRunner(resolver, source, db, time.Hour, logger)
	sched := poller.NewScheduler(runner, []route.Descriptor{
		{Origin: "Augsburg Hbf", Destination: "München Hbf"},
	}, time.Hour, true, logger)

	srv := server.New(&config.Config{Addr: ":0"}, db, sched, nil, tz, logger)
	return &apiTest{db: db, source: source, http: srv.Handler(), tz: tz}
}

func (a *apiTest) request(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.http.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func (a *apiTest) seedRoute(t *testing.T, originName, originEva, destName, destEva string) int64 {
	t.Helper()
	id, err := a.db.UpsertRoute(context.Background(), storage.Route{
		OriginName: originName, OriginEva: originEva,
		DestName: destName, DestEva: destEva,
	})
	require.NoError(t, err)
	return id
}

// seedDelayed stores a departure that has seen a realtime update.
func (a *apiTest) seedDelayed(t *testing.T, routeID int64, service string, planned time.Time, delay int) {
	t.Helper()
	_, err := a.db.UpsertDeparture(context.Background(), storage.Departure{
		RouteID:   routeID,
		ServiceID: service,
		Category:  sql.NullString{String: "ICE", Valid: true},
		Number:    sql.NullString{String: "512", Valid: true},
		PlannedAt: planned,
		RealtimeAt: sql.NullTime{
			Time:  planned.Add(time.Duration(delay) * time.Minute),
			Valid: true,
		},
		DelayMin: sql.NullInt64{Int64: int64(delay), Valid: true},
	})
	require.NoError(t, err)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

type distributionJSON struct {
	Min    *int     `json:"min"`
	Max    *int     `json:"max"`
	Median *int     `json:"median"`
	Mean   *float64 `json:"mean"`
}

type statsResponse struct {
	RouteID        int64  `json:"route_id"`
	OriginName     string `json:"origin_name"`
	DestName       string `json:"dest_name"`
	ReverseRouteID *int64 `json:"reverse_route_id"`
	HourlyStats    []struct {
		Hour   int   `json:"hour"`
		Delays []int `json:"delays"`
		Count  int   `json:"count"`
		distributionJSON
	} `json:"hourly_stats"`
	DailyStats []struct {
		Day     int    `json:"day"`
		DayName string `json:"day_name"`
		Delays  []int  `json:"delays"`
		Count   int    `json:"count"`
		distributionJSON
	} `json:"daily_stats"`
	DayHourStats [][]struct {
		Day   int `json:"day"`
		Hour  int `json:"hour"`
		Count int `json:"count"`
		distributionJSON
	} `json:"day_hour_stats"`
	Summary struct {
		Count           int      `json:"count"`
		AvgDelay        *float64 `json:"avg_delay"`
		MaxDelay        *int     `json:"max_delay"`
		MedianDelay     *int     `json:"median_delay"`
		OnTimeRate      *float64 `json:"ontime_rate"`
		OnTimeThreshold int      `json:"ontime_threshold"`
	} `json:"summary"`
}

func TestRoutesEndpoint(t *testing.T) {
	a := newAPITest(t)
	id1 := a.seedRoute(t, "München Hbf", "8000261", "Augsburg Hbf", "8000013")
	id2 := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")
	require.NoError(t, a.db.SetRouteOriginCoords(context.Background(), id2, 48.3655, 10.8855))

	rec := a.request(t, "GET", "/api/routes")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[struct {
		Routes []struct {
			ID         int64    `json:"id"`
			OriginName string   `json:"origin_name"`
			DestName   string   `json:"dest_name"`
			OriginEva  string   `json:"origin_eva"`
			DestEva    string   `json:"dest_eva"`
			OriginLat  *float64 `json:"origin_lat"`
			OriginLon  *float64 `json:"origin_lon"`
		} `json:"routes"`
	}](t, rec)

	require.Len(t, resp.Routes, 2)
	assert.Equal(t, "Augsburg Hbf", resp.Routes[0].OriginName, "ordered by origin name")
	assert.Equal(t, id2, resp.Routes[0].ID)
	require.NotNil(t, resp.Routes[0].OriginLat)
	assert.InDelta(t, 48.3655, *resp.Routes[0].OriginLat, 1e-6)
	assert.Nil(t, resp.Routes[1].OriginLat, "ungeocode routes keep null coordinates")
	assert.Equal(t, id1, resp.Routes[1].ID)
}

func TestRouteStatsEndpoint(t *testing.T) {
	a := newAPITest(t)
	id := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")

	day := time.Date(2025, 6, 17, 0, 0, 0, 0, a.tz) // a Tuesday
	a.seedDelayed(t, id, "svc-1", day.Add(8*time.Hour), 5)
	a.seedDelayed(t, id, "svc-2", day.Add(8*time.Hour+15*time.Minute), -2)
	a.seedDelayed(t, id, "svc-3", day.Add(14*time.Hour), 20)

	rec := a.request(t, "GET", "/api/routes/"+itoa(id)+"/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[statsResponse](t, rec)

	assert.Equal(t, id, resp.RouteID)
	assert.Equal(t, "Augsburg Hbf", resp.OriginName)
	assert.Equal(t, "München Hbf", resp.DestName)
	assert.Nil(t, resp.ReverseRouteID)

	require.Len(t, resp.HourlyStats, 24, "every hour present for the chart")
	eight := resp.HourlyStats[8]
	assert.Equal(t, []int{5, -2}, eight.Delays)
	assert.Equal(t, 2, eight.Count)
	require.NotNil(t, eight.Median)
	assert.Equal(t, 5, *eight.Median)

	fourteen := resp.HourlyStats[14]
	assert.Equal(t, []int{20}, fourteen.Delays)

	empty := resp.HourlyStats[3]
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Delays)
	assert.Empty(t, empty.Delays)
	assert.Nil(t, empty.Min)
	assert.Nil(t, empty.Mean)

	require.Len(t, resp.DailyStats, 7)
	tuesday := resp.DailyStats[1]
	assert.Equal(t, "Tuesday", tuesday.DayName)
	assert.Equal(t, 3, tuesday.Count)

	require.Len(t, resp.DayHourStats, 7)
	require.Len(t, resp.DayHourStats[0], 24)
	assert.Equal(t, 2, resp.DayHourStats[1][8].Count)

	assert.Equal(t, 3, resp.Summary.Count)
	require.NotNil(t, resp.Summary.AvgDelay)
	assert.InDelta(t, 7.67, *resp.Summary.AvgDelay, 1e-9)
	require.NotNil(t, resp.Summary.MaxDelay)
	assert.Equal(t, 20, *resp.Summary.MaxDelay)
}

func TestRouteStatsThresholdParam(t *testing.T) {
	a := newAPITest(t)
	id := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")

	day := time.Date(2025, 6, 17, 9, 0, 0, 0, a.tz)
	for i, delay := range []int{0, 2, 3, 5, -1} {
		a.seedDelayed(t, id, "svc-"+itoa(int64(i)), day.Add(time.Duration(i)*time.Minute), delay)
	}

	rec := a.request(t, "GET", "/api/routes/"+itoa(id)+"/stats")
	resp := decodeBody[statsResponse](t, rec)
	assert.Equal(t, 0, resp.Summary.OnTimeThreshold)
	require.NotNil(t, resp.Summary.OnTimeRate)
	assert.InDelta(t, 0.4, *resp.Summary.OnTimeRate, 1e-9)

	rec = a.request(t, "GET", "/api/routes/"+itoa(id)+"/stats?threshold=3")
	resp = decodeBody[statsResponse](t, rec)
	assert.Equal(t, 3, resp.Summary.OnTimeThreshold)
	require.NotNil(t, resp.Summary.OnTimeRate)
	assert.InDelta(t, 0.8, *resp.Summary.OnTimeRate, 1e-9)
}

func TestRouteStatsMatrixParam(t *testing.T) {
	a := newAPITest(t)
	id := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")

	rec := a.request(t, "GET", "/api/routes/"+itoa(id)+"/stats?matrix=false")
	require.Equal(t, http.StatusOK, rec.Code)

	raw := decodeBody[map[string]json.RawMessage](t, rec)
	_, present := raw["day_hour_stats"]
	assert.False(t, present, "matrix=false omits day_hour_stats")
	_, present = raw["hourly_stats"]
	assert.True(t, present)
}

func TestRouteStatsEmptyRoute(t *testing.T) {
	a := newAPITest(t)
	id := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")

	rec := a.request(t, "GET", "/api/routes/"+itoa(id)+"/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[statsResponse](t, rec)

	assert.Equal(t, 0, resp.Summary.Count)
	assert.Nil(t, resp.Summary.AvgDelay)
	assert.Nil(t, resp.Summary.OnTimeRate)
	require.Len(t, resp.HourlyStats, 24)
}

func TestRouteStatsNotFound(t *testing.T) {
	a := newAPITest(t)
	id := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")

	rec := a.request(t, "GET", "/api/routes/999/stats")
	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "Route not found", resp["error"])

	rec = a.request(t, "GET", "/api/routes/notanumber/stats")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.request(t, "GET", "/api/routes/"+itoa(id)+"/stats?threshold=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.request(t, "GET", "/api/routes/"+itoa(id)+"/stats?matrix=banana")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCombinedStatsEndpoint(t *testing.T) {
	a := newAPITest(t)
	forward := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")
	reverse := a.seedRoute(t, "München Hbf", "8000261", "Augsburg Hbf", "8000013")

	day := time.Date(2025, 6, 17, 9, 0, 0, 0, a.tz)
	for i, delay := range []int{1, 1, 10} {
		a.seedDelayed(t, forward, "fwd-"+itoa(int64(i)), day.Add(time.Duration(i)*time.Minute), delay)
	}
	for i, delay := range []int{2, 2} {
		a.seedDelayed(t, reverse, "rev-"+itoa(int64(i)), day.Add(time.Duration(i)*time.Minute), delay)
	}

	rec := a.request(t, "GET", "/api/routes/"+itoa(forward)+"/stats/combined")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[statsResponse](t, rec)

	require.NotNil(t, resp.ReverseRouteID)
	assert.Equal(t, reverse, *resp.ReverseRouteID)
	assert.Equal(t, 5, resp.Summary.Count)

	nine := resp.HourlyStats[9]
	assert.Equal(t, 5, nine.Count)
	assert.Equal(t, []int{1, 1, 10, 2, 2}, nine.Delays, "forward direction's delays come first")
}

func TestCombinedStatsWithoutReverseRoute(t *testing.T) {
	a := newAPITest(t)
	id := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")
	a.seedDelayed(t, id, "svc-1", time.Date(2025, 6, 17, 9, 0, 0, 0, a.tz), 4)

	rec := a.request(t, "GET", "/api/routes/"+itoa(id)+"/stats/combined")
	require.Equal(t, http.StatusOK, rec.Code)

	raw := decodeBody[map[string]json.RawMessage](t, rec)
	_, present := raw["reverse_route_id"]
	assert.False(t, present, "no reverse route, no reverse_route_id")

	resp := decodeBody[statsResponse](t, rec)
	assert.Equal(t, 1, resp.Summary.Count)
}

func TestPollingStatusEndpoint(t *testing.T) {
	a := newAPITest(t)

	rec := a.request(t, "GET", "/api/polling/status")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[struct {
		Enabled         bool    `json:"enabled"`
		IntervalSeconds int     `json:"interval_seconds"`
		IntervalHours   float64 `json:"interval_hours"`
		RoutesCount     int     `json:"routes_count"`
		Routes          []struct {
			Origin      string `json:"origin"`
			Destination string `json:"destination"`
		} `json:"routes"`
		Running bool `json:"running"`
	}](t, rec)

	assert.True(t, resp.Enabled)
	assert.Equal(t, 3600, resp.IntervalSeconds)
	assert.InDelta(t, 1.0, resp.IntervalHours, 1e-9)
	assert.Equal(t, 1, resp.RoutesCount)
	require.Len(t, resp.Routes, 1)
	assert.Equal(t, "Augsburg Hbf", resp.Routes[0].Origin)
	assert.False(t, resp.Running)
}

func TestPollingRunEndpoint(t *testing.T) {
	a := newAPITest(t)

	planned := time.Now().In(a.tz).Add(-30 * time.Minute).Truncate(time.Minute)
	a.source.departures = []iris.Departure{{
		ServiceID: "live-1",
		Category:  "ICE",
		Number:    "690",
		Planned:   planned,
		Realtime:  planned.Add(7 * time.Minute),
	}}

	rec := a.request(t, "POST", "/api/polling/run")
	require.Equal(t, http.StatusAccepted, rec.Code)

	summary := decodeBody[struct {
		CycleID          string `json:"cycle_id"`
		RoutesAttempted  int    `json:"routes_attempted"`
		RoutesSucceeded  int    `json:"routes_succeeded"`
		DeparturesStored int    `json:"departures_stored"`
	}](t, rec)
	assert.NotEmpty(t, summary.CycleID)
	assert.Equal(t, 1, summary.RoutesAttempted)
	assert.Equal(t, 1, summary.RoutesSucceeded)
	assert.Equal(t, 1, summary.DeparturesStored)

	rec = a.request(t, "GET", "/api/departures?all_time=true")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[struct {
		Departures []struct {
			ServiceID  string `json:"service_id"`
			DelayMin   *int64 `json:"delay_min"`
			OriginName string `json:"origin_name"`
		} `json:"departures"`
	}](t, rec)
	require.Len(t, resp.Departures, 1)
	assert.Equal(t, "live-1", resp.Departures[0].ServiceID)
	require.NotNil(t, resp.Departures[0].DelayMin)
	assert.EqualValues(t, 7, *resp.Departures[0].DelayMin)
	assert.Equal(t, "Augsburg Hbf", resp.Departures[0].OriginName)
}

func TestPollingRunConflict(t *testing.T) {
	a := newAPITest(t)
	a.source.delay = 100 * time.Millisecond

	firstDone := make(chan int, 1)
	go func() {
		rec := a.request(t, "POST", "/api/polling/run")
		firstDone <- rec.Code
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&a.source.inFlight) == 1
	}, 2*time.Second, time.Millisecond)

	rec := a.request(t, "POST", "/api/polling/run")
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "poll cycle already running", resp["error"])

	assert.Equal(t, http.StatusAccepted, <-firstDone)
}

type departuresResponse struct {
	Meta struct {
		SinceHours *int   `json:"since_hours"`
		Limit      int    `json:"limit"`
		Offset     int    `json:"offset"`
		Count      int    `json:"count"`
		Total      int    `json:"total"`
		Now        string `json:"now"`
	} `json:"meta"`
	Departures []struct {
		ID         int64   `json:"id"`
		RouteID    int64   `json:"route_id"`
		ServiceID  string  `json:"service_id"`
		Category   *string `json:"category"`
		PlannedDT  string  `json:"planned_dt"`
		RealtimeDT *string `json:"realtime_dt"`
		DelayMin   *int64  `json:"delay_min"`
		Status     *string `json:"status"`
		OriginName string  `json:"origin_name"`
		DestName   string  `json:"dest_name"`
	} `json:"departures"`
}

func TestDeparturesEndpoint(t *testing.T) {
	a := newAPITest(t)
	id := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")

	now := time.Now().In(a.tz)
	a.seedDelayed(t, id, "recent-1", now.Add(-1*time.Hour), 3)
	a.seedDelayed(t, id, "recent-2", now.Add(-2*time.Hour), 0)
	a.seedDelayed(t, id, "ancient", now.Add(-72*time.Hour), 12)

	rec := a.request(t, "GET", "/api/departures")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[departuresResponse](t, rec)

	assert.Nil(t, resp.Meta.SinceHours, "default window reports no explicit since")
	assert.Equal(t, 1000, resp.Meta.Limit)
	assert.Equal(t, 2, resp.Meta.Count, "72h old departure is outside the default 24h window")
	assert.Equal(t, 2, resp.Meta.Total)
	require.Len(t, resp.Departures, 2)
	assert.Equal(t, "recent-1", resp.Departures[0].ServiceID, "newest first")
	assert.Equal(t, "recent-2", resp.Departures[1].ServiceID)
	assert.Equal(t, "Augsburg Hbf", resp.Departures[0].OriginName)
	assert.Equal(t, "München Hbf", resp.Departures[0].DestName)

	rec = a.request(t, "GET", "/api/departures?since=96")
	resp = decodeBody[departuresResponse](t, rec)
	require.NotNil(t, resp.Meta.SinceHours)
	assert.Equal(t, 96, *resp.Meta.SinceHours)
	assert.Equal(t, 3, resp.Meta.Total)

	rec = a.request(t, "GET", "/api/departures?all_time=true")
	resp = decodeBody[departuresResponse](t, rec)
	assert.Equal(t, 3, resp.Meta.Total)
}

func TestDeparturesFilters(t *testing.T) {
	a := newAPITest(t)
	ab := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")
	ba := a.seedRoute(t, "München Hbf", "8000261", "Augsburg Hbf", "8000013")

	now := time.Now().In(a.tz)
	a.seedDelayed(t, ab, "ice-run", now.Add(-1*time.Hour), 3)
	_, err := a.db.UpsertDeparture(context.Background(), storage.Departure{
		RouteID:   ba,
		ServiceID: "re-run",
		Category:  sql.NullString{String: "RE", Valid: true},
		Number:    sql.NullString{String: "4076", Valid: true},
		PlannedAt: now.Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	rec := a.request(t, "GET", "/api/departures?route_id="+itoa(ab))
	resp := decodeBody[departuresResponse](t, rec)
	require.Len(t, resp.Departures, 1)
	assert.Equal(t, "ice-run", resp.Departures[0].ServiceID)

	rec = a.request(t, "GET", "/api/departures?q=RE+4076")
	resp = decodeBody[departuresResponse](t, rec)
	require.Len(t, resp.Departures, 1)
	assert.Equal(t, "re-run", resp.Departures[0].ServiceID)
	assert.Nil(t, resp.Departures[0].DelayMin, "departure without realtime update has null delay")
	assert.Nil(t, resp.Departures[0].RealtimeDT)

	rec = a.request(t, "GET", "/api/departures?limit=1")
	resp = decodeBody[departuresResponse](t, rec)
	assert.Equal(t, 1, resp.Meta.Count)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, "ice-run", resp.Departures[0].ServiceID)

	rec = a.request(t, "GET", "/api/departures?limit=1&offset=1")
	resp = decodeBody[departuresResponse](t, rec)
	assert.Equal(t, 1, resp.Meta.Offset)
	require.Len(t, resp.Departures, 1)
	assert.Equal(t, "re-run", resp.Departures[0].ServiceID)
}

func TestDeparturesDateRange(t *testing.T) {
	a := newAPITest(t)
	id := a.seedRoute(t, "Augsburg Hbf", "8000013", "München Hbf", "8000261")
	a.seedDelayed(t, id, "june-17", time.Date(2025, 6, 17, 10, 0, 0, 0, a.tz), 5)
	a.seedDelayed(t, id, "june-20", time.Date(2025, 6, 20, 10, 0, 0, 0, a.tz), 2)

	rec := a.request(t, "GET", "/api/departures?date_from=2025-06-17&date_to=2025-06-17")
	resp := decodeBody[departuresResponse](t, rec)
	require.Len(t, resp.Departures, 1)
	assert.Equal(t, "june-17", resp.Departures[0].ServiceID)
	assert.Equal(t, "2025-06-17 10:00:00", resp.Departures[0].PlannedDT)

	rec = a.request(t, "GET", "/api/departures?date_from=2025-06-18")
	resp = decodeBody[departuresResponse](t, rec)
	require.Len(t, resp.Departures, 1)
	assert.Equal(t, "june-20", resp.Departures[0].ServiceID)
}

func TestDeparturesValidation(t *testing.T) {
	a := newAPITest(t)

	for _, path := range []string{
		"/api/departures?since=0",
		"/api/departures?since=9000",
		"/api/departures?since=abc",
		"/api/departures?limit=0",
		"/api/departures?limit=6000",
		"/api/departures?offset=-1",
		"/api/departures?route_id=abc",
		"/api/departures?date_from=17.06.2025",
		"/api/departures?all_time=maybe",
	} {
		rec := a.request(t, "GET", path)
		assert.Equalf(t, http.StatusBadRequest, rec.Code, "GET %s", path)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
