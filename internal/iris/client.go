// Package iris fetches planned timetables and realtime changes from the
// DB timetables API and resolves station names to EVA numbers.
package iris

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultBaseURL is the DB API marketplace endpoint for timetables v1.
const DefaultBaseURL = "https://apis.deutschebahn.com/db-api-marketplace/apis/timetables/v1"

const (
	requestTimeout = 20 * time.Second
	userAgent      = "dblive/1.0"

	acceptJSON = "application/json"
	acceptXML  = "application/xml"
)

// Client fetches timetable data from the DB timetables API.
type Client struct {
	baseURL  string
	clientID string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
	timer    backoff.Timer // overridden in tests, nil means real time
}

// NewClient returns a client for the timetable API at baseURL,
// authenticating with the given API marketplace credentials.
func NewClient(baseURL, clientID, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// get performs a single GET against the API without any retrying.
func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("DB-Client-Id", c.clientID)
	req.Header.Set("DB-Api-Key", c.apiKey)
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timetable request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (c *Client) getWithRetry(ctx context.Context, rawURL, accept, what string) ([]byte, error) {
	return fetchWithRetry(ctx, c.logger, c.timer, what, func() ([]byte, error) {
		return c.get(ctx, rawURL, accept)
	})
}

// StationSearch looks up stations matching the given name pattern. The
// JSON representation is requested first; some gateway configurations
// only serve XML, so a 406 or an unparseable JSON body falls back to the
// XML representation of the same resource.
func (c *Client) StationSearch(ctx context.Context, pattern string) ([]Station, error) {
	rawURL := c.baseURL + "/station/" + url.PathEscape(pattern)

	body, err := c.getWithRetry(ctx, rawURL, acceptJSON, "station search")
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotAcceptable {
			return c.stationSearchXML(ctx, rawURL)
		}
		return nil, err
	}

	stations, err := parseStationsJSON(body)
	if err != nil {
		c.logger.Debug("station JSON unparseable, falling back to XML",
			"pattern", pattern, "error", err)
		return c.stationSearchXML(ctx, rawURL)
	}
	return stations, nil
}

func (c *Client) stationSearchXML(ctx context.Context, rawURL string) ([]Station, error) {
	body, err := c.getWithRetry(ctx, rawURL, acceptXML, "station search (xml)")
	if err != nil {
		return nil, err
	}
	var payload stationsXML
	if err := xml.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse station response: %w", err)
	}
	stations := make([]Station, 0, len(payload.Stations))
	for _, s := range payload.Stations {
		if s.Name == "" || s.EVA == "" {
			continue
		}
		stations = append(stations, Station{
			Name:   s.Name,
			EVA:    padEVA(s.EVA),
			RIL100: s.DS100,
		})
	}
	return stations, nil
}

// PlanHour fetches the planned timetable slice for one station and one
// hour block. The hour is taken from when in the timetable's timezone.
func (c *Client) PlanHour(ctx context.Context, eva string, when time.Time) ([]Departure, error) {
	local := when.In(Timezone())
	rawURL := fmt.Sprintf("%s/plan/%s/%s/%s",
		c.baseURL, url.PathEscape(eva), local.Format("060102"), local.Format("15"))

	body, err := c.getWithRetry(ctx, rawURL, acceptXML, "plan")
	if err != nil {
		return nil, err
	}
	var tt timetableXML
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse plan response: %w", err)
	}
	return departuresFromPlan(tt, c.logger), nil
}

// Changes fetches all known realtime changes for a station.
func (c *Client) Changes(ctx context.Context, eva string) ([]Change, error) {
	rawURL := c.baseURL + "/fchg/" + url.PathEscape(eva)

	body, err := c.getWithRetry(ctx, rawURL, acceptXML, "changes")
	if err != nil {
		return nil, err
	}
	var tt timetableXML
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse changes response: %w", err)
	}
	return changesFromTimetable(tt), nil
}

// stationJSON tolerates the field name and type variations the station
// endpoint is known to produce.
type stationJSON struct {
	Name     string `json:"name"`
	NameLong string `json:"nameLong"`
	EvaNo    any    `json:"evaNo"`
	Eva      any    `json:"eva"`
	ID       any    `json:"id"`
	Ril100   string `json:"ril100"`
	DS100    string `json:"ds100"`
	Ril      string `json:"ril"`
}

func parseStationsJSON(body []byte) ([]Station, error) {
	var list []stationJSON
	if err := json.Unmarshal(body, &list); err != nil {
		var wrapper struct {
			Result []stationJSON `json:"result"`
		}
		if err2 := json.Unmarshal(body, &wrapper); err2 != nil {
			return nil, err
		}
		list = wrapper.Result
	}
	stations := make([]Station, 0, len(list))
	for _, s := range list {
		name := s.Name
		if name == "" {
			name = s.NameLong
		}
		eva := firstNonEmpty(numericField(s.EvaNo), numericField(s.Eva), numericField(s.ID))
		if name == "" || eva == "" {
			continue
		}
		stations = append(stations, Station{
			Name:   name,
			EVA:    padEVA(eva),
			RIL100: firstNonEmpty(s.Ril100, s.DS100, s.Ril),
		})
	}
	return stations, nil
}

// numericField renders an EVA value that may arrive as string or number.
func numericField(v any) string {
	switch n := v.(type) {
	case string:
		return strings.TrimSpace(n)
	case float64:
		return strconv.FormatInt(int64(n), 10)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
