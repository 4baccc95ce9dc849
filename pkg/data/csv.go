package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Series is a price series loaded from file, queryable by delivery time.
// It implements Source; like Profile, the observation time is ignored.
type Series struct {
	name   string
	points []ProfilePoint
}

// LoadSeriesCSV reads a two-column CSV (timestamp, value). Timestamps are
// RFC3339; a header row is skipped if present.
func LoadSeriesCSV(name, path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series %s: %w", path, err)
	}
	defer f.Close()

	return ReadSeries(name, f)
}

// ReadSeries parses a timestamp,value series from a reader
func ReadSeries(name string, r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	points := make([]ProfilePoint, 0)
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read series %s: %w", name, err)
		}

		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("series %s line %d: expected 2 columns, got %d", name, line, len(record))
		}

		// Skip a header row
		if line == 1 && strings.EqualFold(record[0], "timestamp") {
			continue
		}

		ts, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			return nil, fmt.Errorf("series %s line %d: %w", name, line, err)
		}

		value, err := fpdecimal.FromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("series %s line %d: %w", name, line, err)
		}

		points = append(points, ProfilePoint{Time: ts, Value: value})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	return &Series{name: name, points: points}, nil
}

// Name identifies the series
func (s *Series) Name() string {
	return s.name
}

// At returns the most recent value at or before delivery
func (s *Series) At(delivery, now time.Time) (fpdecimal.Decimal, error) {
	for i := len(s.points) - 1; i >= 0; i-- {
		if !s.points[i].Time.After(delivery) {
			return s.points[i].Value, nil
		}
	}
	return fpdecimal.Zero, ErrNoData
}

// Ensure Series implements Source
var _ Source = (*Series)(nil)
