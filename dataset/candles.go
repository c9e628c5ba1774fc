// Package dataset loads candle and signal series from local files.
// Inputs are historical exports, so everything is read up front and
// returned in ascending time order.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"

	"github.com/signalforge/backtester/market"
)

// LoadCandles reads an OHLCV series from path. Plain .csv, .csv.xz and
// .zip archives holding a single CSV are all accepted. Rows are
//
//	time,open,high,low,close,volume
//
// with RFC3339 timestamps. A header row is allowed. The result is
// sorted ascending; duplicate timestamps are an error.
func LoadCandles(path string) (market.CandleList, error) {
	switch {
	case strings.HasSuffix(path, ".zip"):
		csvPath, cleanup, err := extractSingleCSV(path)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		path = csvPath
	}

	r, err := openMaybeXZ(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	candles, err := readCandles(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return candles, nil
}

func readCandles(r io.Reader) (market.CandleList, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var (
		out      market.CandleList
		sawFirst bool
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		c, ok, err := parseCandleRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	if !out.Ascending() {
		return nil, fmt.Errorf("candle series has duplicate timestamps")
	}
	return out, nil
}

func parseCandleRow(row []string) (market.Candle, bool, error) {
	// Need at least: time,open,high,low,close
	if len(row) < 5 {
		return market.Candle{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Candle{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Candle{}, false, err
	}

	var c market.Candle
	c.Time = t

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"open", row[1], &c.Open},
		{"high", row[2], &c.High},
		{"low", row[3], &c.Low},
		{"close", row[4], &c.Close},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(strings.TrimSpace(f.raw))
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = v
	}

	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		v, err := decimal.NewFromString(strings.TrimSpace(row[5]))
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad volume %q: %w", row[5], err)
		}
		c.Volume = v
	}

	return c, true, nil
}

func parseTime(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}
	return t, nil
}

// openMaybeXZ opens path, transparently decompressing a .xz suffix.
func openMaybeXZ(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".xz") {
		return f, nil
	}

	xr, err := xz.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open xz %s: %w", path, err)
	}
	return &xzReadCloser{r: xr, f: f}, nil
}

type xzReadCloser struct {
	r *xz.Reader
	f *os.File
}

func (x *xzReadCloser) Read(p []byte) (int, error) { return x.r.Read(p) }
func (x *xzReadCloser) Close() error               { return x.f.Close() }

// extractSingleCSV unpacks a zip archive into a temp dir and returns
// the path of the one CSV file inside it.
func extractSingleCSV(zipPath string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "dataset-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	if err := unzip.Extract(zipPath, dir); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("extract %s: %w", zipPath, err)
	}

	var found []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".csv") {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		cleanup()
		return "", nil, err
	}
	if len(found) != 1 {
		cleanup()
		return "", nil, fmt.Errorf("%s: expected exactly one CSV inside, found %d", zipPath, len(found))
	}
	return found[0], cleanup, nil
}
