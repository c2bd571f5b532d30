package sensor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultSheetURL is the CSV export of the spreadsheet the sensor node writes to.
const DefaultSheetURL = "https://docs.google.com/spreadsheets/d/1Sc961SwCUZ3TExI04YhSRELJSL8nQsQ4VAfsLtV8WSQ/export?format=csv"

// TailRows is how many trailing sheet rows accompany a live reading.
const TailRows = 5

// maxSheetBytes caps how much of the export is read.
const maxSheetBytes = 8 << 20

// ErrSheetTooLarge is returned when the export exceeds the read cap. The last
// row of a truncated export is not the latest reading.
var ErrSheetTooLarge = errors.New("sheet export too large")

// Snapshot is the live reading together with the sheet context it came from.
type Snapshot struct {
	Reading Reading    `json:"reading"`
	Header  []string   `json:"header"`
	Tail    [][]string `json:"tail"`
}

// Source produces the latest reading. The live sheet fetcher is the production
// implementation; tests substitute their own.
type Source interface {
	FetchLatest(ctx context.Context) (Snapshot, error)
}

// Fetcher pulls the spreadsheet CSV export over HTTP. Failures are returned to
// the caller and never retried.
type Fetcher struct {
	url      string
	client   *http.Client
	maxBytes int64
}

func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxSheetBytes,
	}
}

// WithClient swaps the HTTP client, mainly for tests.
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

func (f *Fetcher) URL() string {
	return f.url
}

// FetchLatest downloads the sheet and returns the reading in its last row.
func (f *Fetcher) FetchLatest(ctx context.Context) (Snapshot, error) {
	if f.url == "" {
		return Snapshot{}, errors.New("sheet url is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Snapshot{}, fmt.Errorf("fetch sheet: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read sheet: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return Snapshot{}, fmt.Errorf("fetch sheet: %w (limit %d bytes)", ErrSheetTooLarge, f.maxBytes)
	}

	table, err := ReadTable(bytes.NewReader(body))
	if err != nil {
		return Snapshot{}, err
	}
	reading, err := table.Last()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Reading: reading,
		Header:  table.Header,
		Tail:    table.Tail(TailRows),
	}, nil
}
