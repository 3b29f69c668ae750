package indicator

import (
	"fmt"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/ta"
	"github.com/khanhlinhdang/atkcore/pkg/types"
	"github.com/khanhlinhdang/atkcore/pkg/worker"
)

// MACDParams configures a MACD engine: fast/slow EMAs plus a signal stage.
type MACDParams struct {
	Source       types.Source `json:"source" yaml:"source"`
	FastPeriod   int          `json:"fast" yaml:"fast"`
	SlowPeriod   int          `json:"slow" yaml:"slow"`
	SignalPeriod int          `json:"signal" yaml:"signal"`
	MAMode       ta.MAMode    `json:"mamode" yaml:"mamode"`
}

func (p MACDParams) normalize() MACDParams {
	if p.Source == "" {
		p.Source = types.SourceClose
	}
	if p.FastPeriod <= 0 {
		p.FastPeriod = 12
	}
	if p.SlowPeriod <= 0 {
		p.SlowPeriod = 26
	}
	if p.SignalPeriod <= 0 {
		p.SignalPeriod = 9
	}
	if p.SlowPeriod < p.FastPeriod {
		p.FastPeriod, p.SlowPeriod = p.SlowPeriod, p.FastPeriod
	}
	p.MAMode = p.MAMode.Normalize(ta.MAExp)
	return p
}

func (p MACDParams) definition() Definition {
	return Definition{
		Kind:     "macd",
		Name:     fmt.Sprintf("MACD %s %s %d %d %d", p.Source, p.MAMode, p.SlowPeriod, p.FastPeriod, p.SignalPeriod),
		Warmup:   p.SlowPeriod + p.SignalPeriod - 1,
		Channels: 3,
		Compute: func(tbl types.KLineTable) (ta.Frame, error) {
			return ta.MACD(tbl, p.Source, p.FastPeriod, p.SlowPeriod, p.SignalPeriod, p.MAMode)
		},
	}
}

// MACD is a three-channel indicator instance: macd line, histogram, signal
// line, in that channel order.
type MACD struct {
	*Engine
	Params MACDParams
}

func NewMACD(source *candles.Store, exec worker.Executor, params MACDParams, opts ...Option) *MACD {
	p := params.normalize()
	return &MACD{
		Engine: New(source, exec, p.definition(), opts...),
		Params: p,
	}
}

func (inc *MACD) ChangeParams(params MACDParams) {
	inc.Params = params.normalize()
	def := inc.Params.definition()
	inc.Rebind(nil, &def)
}

// MACDLine returns the macd channel.
func (inc *MACD) MACDLine() floats.Slice {
	return inc.Channel(0)
}

// Histogram returns the histogram channel.
func (inc *MACD) Histogram() floats.Slice {
	return inc.Channel(1)
}

// Signal returns the signal line channel.
func (inc *MACD) Signal() floats.Slice {
	return inc.Channel(2)
}
