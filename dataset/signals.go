package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/signalforge/backtester/market"
)

// LoadSignals reads a JSON array of signal predictions from path,
// .xz-compressed or plain. Signals come back sorted ascending by
// timestamp; content checks (direction, confidence, stops) are left to
// the executor, which skips bad signals instead of failing the run.
func LoadSignals(path string) (market.SignalList, error) {
	r, err := openMaybeXZ(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var signals market.SignalList
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("parse signals %s: %w", path, err)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Time.Before(signals[j].Time)
	})
	return signals, nil
}
