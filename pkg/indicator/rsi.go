package indicator

import (
	"fmt"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/ta"
	"github.com/khanhlinhdang/atkcore/pkg/types"
	"github.com/khanhlinhdang/atkcore/pkg/worker"
)

// RSIParams configures a Relative Strength Index engine. Out-of-range values
// are normalized to chart defaults, never rejected.
type RSIParams struct {
	Source types.Source `json:"source" yaml:"source"`
	Length int          `json:"length" yaml:"length"`
	MAMode ta.MAMode    `json:"mamode" yaml:"mamode"`
}

func (p RSIParams) normalize() RSIParams {
	if p.Source == "" {
		p.Source = types.SourceClose
	}
	if p.Length <= 0 {
		p.Length = 14
	}
	p.MAMode = p.MAMode.Normalize(ta.MAWilder)
	return p
}

func (p RSIParams) definition() Definition {
	return Definition{
		Kind:     "rsi",
		Name:     fmt.Sprintf("RSI %s %d %s", p.Source, p.Length, p.MAMode),
		Warmup:   p.Length + 1,
		Channels: 1,
		Compute: func(tbl types.KLineTable) (ta.Frame, error) {
			return ta.RSI(tbl, p.Source, p.Length, p.MAMode)
		},
	}
}

// RSI is a single-channel indicator instance.
type RSI struct {
	*Engine
	Params RSIParams
}

func NewRSI(source *candles.Store, exec worker.Executor, params RSIParams, opts ...Option) *RSI {
	p := params.normalize()
	return &RSI{
		Engine: New(source, exec, p.definition(), opts...),
		Params: p,
	}
}

// ChangeParams swaps the parameter set and regenerates the series.
func (inc *RSI) ChangeParams(params RSIParams) {
	inc.Params = params.normalize()
	def := inc.Params.definition()
	inc.Rebind(nil, &def)
}

// Values returns the rsi channel.
func (inc *RSI) Values() floats.Slice {
	return inc.Channel(0)
}
