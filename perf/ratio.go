package perf

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Ratio is a risk/return metric that may not have a meaningful
// numeric value. A single trade cannot produce a Sharpe ratio and a
// loss-free run has no finite profit factor, so callers must treat
// undefined and infinite as states distinct from zero.
type Ratio struct {
	Value    decimal.Decimal
	Defined  bool
	Infinite bool
}

// DefinedRatio wraps a finite metric value.
func DefinedRatio(v decimal.Decimal) Ratio {
	return Ratio{Value: v, Defined: true}
}

// UndefinedRatio marks a metric that cannot be computed from the
// sample (too few trades, zero variance, zero drawdown).
func UndefinedRatio() Ratio {
	return Ratio{}
}

// InfiniteRatio marks an unbounded metric, e.g. profit factor with
// zero gross loss.
func InfiniteRatio() Ratio {
	return Ratio{Defined: true, Infinite: true}
}

func (r Ratio) String() string {
	switch {
	case !r.Defined:
		return "undefined"
	case r.Infinite:
		return "inf"
	default:
		return r.Value.String()
	}
}

// MarshalJSON encodes undefined as null and infinite as "inf" so
// downstream consumers never see a fake zero.
func (r Ratio) MarshalJSON() ([]byte, error) {
	switch {
	case !r.Defined:
		return []byte("null"), nil
	case r.Infinite:
		return []byte(`"inf"`), nil
	default:
		return []byte(r.Value.String()), nil
	}
}

// UnmarshalJSON accepts the three encodings MarshalJSON produces.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch s {
	case "null":
		*r = UndefinedRatio()
		return nil
	case `"inf"`, `"+inf"`:
		*r = InfiniteRatio()
		return nil
	}
	v, err := decimal.NewFromString(strings.Trim(s, `"`))
	if err != nil {
		return fmt.Errorf("parse ratio %s: %w", s, err)
	}
	*r = DefinedRatio(v)
	return nil
}
