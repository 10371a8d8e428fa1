package iris

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Departure statuses reported by the changes feed.
const (
	StatusCancelled = "c"
	StatusPlanned   = "p"
	StatusAdded     = "a"
)

// Station is a resolved station with its EVA number.
type Station struct {
	Name   string `json:"name"`
	EVA    string `json:"eva"`
	RIL100 string `json:"ril100,omitempty"`
}

// Departure is one train leaving a station, merged from the planned
// timetable and any realtime changes.
type Departure struct {
	ServiceID        string
	Category         string
	Number           string
	Planned          time.Time
	Realtime         time.Time // zero when no realtime update was observed
	PlannedPlatform  string
	RealtimePlatform string
	Status           string
	Path             []string
}

// HasRealtime reports whether a realtime update has been observed for
// this departure.
func (d Departure) HasRealtime() bool {
	return !d.Realtime.IsZero()
}

// DelayMinutes returns the delay in whole minutes and whether a realtime
// update exists at all. Early departures yield negative values.
func (d Departure) DelayMinutes() (int, bool) {
	if !d.HasRealtime() {
		return 0, false
	}
	return int(d.Realtime.Sub(d.Planned) / time.Minute), true
}

// IsCancelled reports whether the departure was cancelled.
func (d Departure) IsCancelled() bool {
	return d.Status == StatusCancelled
}

// EffectiveTime is the realtime departure time when known, otherwise the
// planned time.
func (d Departure) EffectiveTime() time.Time {
	if d.HasRealtime() {
		return d.Realtime
	}
	return d.Planned
}

// Change is a realtime update for one service from the changes feed.
type Change struct {
	ServiceID string
	Realtime  time.Time
	Platform  string
	Status    string
}

// Timetable XML as served by the plan and changes endpoints.
type timetableXML struct {
	XMLName  xml.Name     `xml:"timetable"`
	Station  string       `xml:"station,attr"`
	Date     string       `xml:"d,attr"`
	Services []serviceXML `xml:"s"`
}

type serviceXML struct {
	ID        string        `xml:"id,attr"`
	TripLabel *tripLabelXML `xml:"tl"`
	Departure *eventXML     `xml:"dp"`
	Arrival   *eventXML     `xml:"ar"`
}

type tripLabelXML struct {
	Category string `xml:"c,attr"`
	Number   string `xml:"n,attr"`
}

type eventXML struct {
	PlannedTime     string `xml:"pt,attr"`
	ChangedTime     string `xml:"ct,attr"`
	PlannedPlatform string `xml:"pp,attr"`
	ChangedPlatform string `xml:"cp,attr"`
	PlannedPath     string `xml:"ppth,attr"`
	Status          string `xml:"cs,attr"`
}

// Station list XML, the fallback format of the station endpoint.
type stationsXML struct {
	XMLName  xml.Name     `xml:"stations"`
	Stations []stationXML `xml:"station"`
}

type stationXML struct {
	Name  string `xml:"name,attr"`
	EVA   string `xml:"eva,attr"`
	DS100 string `xml:"ds100,attr"`
}

// Timezone returns the Europe/Berlin location all timetable data is
// expressed in.
func Timezone() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.FixedZone("CET", 60*60)
	}
	return loc
}

// parseTimetableTime parses the compact YYMMDDHHMM timestamps used in
// pt and ct attributes.
func parseTimetableTime(s string) (time.Time, error) {
	if len(s) != 10 {
		return time.Time{}, fmt.Errorf("timetable time %q: want 10 digits", s)
	}
	year, err := strconv.Atoi(s[0:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("timetable time %q: %w", s, err)
	}
	month, err := strconv.Atoi(s[2:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("timetable time %q: %w", s, err)
	}
	day, err := strconv.Atoi(s[4:6])
	if err != nil {
		return time.Time{}, fmt.Errorf("timetable time %q: %w", s, err)
	}
	hour, err := strconv.Atoi(s[6:8])
	if err != nil {
		return time.Time{}, fmt.Errorf("timetable time %q: %w", s, err)
	}
	minute, err := strconv.Atoi(s[8:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("timetable time %q: %w", s, err)
	}
	return time.Date(2000+year, time.Month(month), day, hour, minute, 0, 0, Timezone()), nil
}

// padEVA left pads EVA numbers to the 7 digits the timetable endpoints
// expect.
func padEVA(eva string) string {
	eva = strings.TrimSpace(eva)
	for len(eva) < 7 {
		eva = "0" + eva
	}
	return eva
}
