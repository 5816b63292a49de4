package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sentiment-event-alerts/internal/detector"
)

// HTTPOptions parameterise the remote series loader.
type HTTPOptions struct {
	BaseURL   string
	Path      string
	Timeout   time.Duration
	UserAgent string
}

// HTTPLoader fetches the sentiment series as JSON from a remote endpoint.
type HTTPLoader struct {
	opts    HTTPOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewHTTP constructs a remote series loader.
func NewHTTP(opts HTTPOptions, logger zerolog.Logger) *HTTPLoader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPLoader{
		opts:    opts,
		logger:  logger.With().Str("component", "http_loader").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

type seriesResponse struct {
	Series []struct {
		Date  string      `json:"date"`
		Value json.Number `json:"value"`
	} `json:"series"`
}

type errorResponse struct {
	ErrorType   string `json:"errorType"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

// LoadSeries performs the request and returns the series sorted by date.
func (l *HTTPLoader) LoadSeries(ctx context.Context) ([]detector.Point, error) {
	if l.baseURL == "" {
		return nil, errors.New("loader base URL required")
	}

	path := l.opts.Path
	if path == "" {
		path = "/series"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(l.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "sentimentwatcher/1.0")
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	var body seriesResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode series payload: %w", err)
	}

	points := make([]detector.Point, 0, len(body.Series))
	for i, entry := range body.Series {
		value, err := decimal.NewFromString(entry.Value.String())
		if err != nil {
			return nil, fmt.Errorf("series entry %d: parse value %q: %w", i, entry.Value.String(), err)
		}
		date, err := parseDate(entry.Date)
		if err != nil {
			return nil, fmt.Errorf("series entry %d: %w", i, err)
		}
		points = append(points, detector.Point{Date: date, Value: value})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	l.logger.Info().Int("observations", len(points)).Msg("series fetched")
	return points, nil
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Description != "" {
			return fmt.Errorf("series api error (%d): %s", status, apiErr.Description)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("series api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.ErrorType != "" {
			return fmt.Errorf("series api error (%d): %s", status, apiErr.ErrorType)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("series api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("series api error (%d)", status)
}

var _ SeriesLoader = (*HTTPLoader)(nil)
var _ SeriesLoader = (*CSVLoader)(nil)
