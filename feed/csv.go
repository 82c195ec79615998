package feed

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evdnx/smacross/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names recognised by LoadCSV. Only time and close are required;
// missing open/high/low default to close and missing volume to zero.
const (
	ColTime   = "time"
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// OpenCSV loads a bar file from disk.
func OpenCSV(path string) (*SliceSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadCSV reads a headered CSV of bars. The time column holds RFC3339
// timestamps or unix milliseconds.
func LoadCSV(r io.Reader) (*SliceSource, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.WithTypes(map[string]series.Type{
			ColTime:   series.String,
			ColOpen:   series.Float,
			ColHigh:   series.Float,
			ColLow:    series.Float,
			ColClose:  series.Float,
			ColVolume: series.Float,
		}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("feed: read csv: %w", df.Err)
	}

	has := make(map[string]bool)
	for _, name := range df.Names() {
		has[name] = true
	}
	if !has[ColTime] || !has[ColClose] {
		return nil, fmt.Errorf("%w: csv needs %q and %q columns, got %v", ErrBadRecord, ColTime, ColClose, df.Names())
	}

	times := df.Col(ColTime).Records()
	closes := df.Col(ColClose).Float()
	column := func(name string, fallback []float64) []float64 {
		if !has[name] {
			return fallback
		}
		return df.Col(name).Float()
	}
	opens := column(ColOpen, closes)
	highs := column(ColHigh, closes)
	lows := column(ColLow, closes)
	volumes := column(ColVolume, make([]float64, len(closes)))

	bars := make([]types.Bar, len(closes))
	for i := range closes {
		ts, err := parseTime(times[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadRecord, i+1, err)
		}
		bars[i] = types.Bar{
			Time:   ts,
			Open:   opens[i],
			High:   highs[i],
			Low:    lows[i],
			Close:  closes[i],
			Volume: volumes[i],
		}
	}
	return NewSliceSource(bars), nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}
