package indicator

import (
	"fmt"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/ta"
	"github.com/khanhlinhdang/atkcore/pkg/types"
	"github.com/khanhlinhdang/atkcore/pkg/worker"
)

// StochRSIParams configures a stochastic RSI engine, the RSI-of-RSI
// oscillator.
type StochRSIParams struct {
	Source      types.Source `json:"source" yaml:"source"`
	RSILength   int          `json:"rsiLength" yaml:"rsiLength"`
	StochLength int          `json:"stochLength" yaml:"stochLength"`
	SmoothK     int          `json:"smoothK" yaml:"smoothK"`
	SmoothD     int          `json:"smoothD" yaml:"smoothD"`
	MAMode      ta.MAMode    `json:"mamode" yaml:"mamode"`
}

func (p StochRSIParams) normalize() StochRSIParams {
	if p.Source == "" {
		p.Source = types.SourceClose
	}
	if p.RSILength <= 0 {
		p.RSILength = 14
	}
	if p.StochLength <= 0 {
		p.StochLength = 14
	}
	if p.SmoothK <= 0 {
		p.SmoothK = 3
	}
	if p.SmoothD <= 0 {
		p.SmoothD = 3
	}
	p.MAMode = p.MAMode.Normalize(ta.MAWilder)
	return p
}

func (p StochRSIParams) definition() Definition {
	return Definition{
		Kind:     "stochrsi",
		Name:     fmt.Sprintf("StochRSI %s %d %d %d %d", p.Source, p.RSILength, p.StochLength, p.SmoothK, p.SmoothD),
		Warmup:   p.RSILength + p.StochLength + p.SmoothK + p.SmoothD - 2,
		Channels: 2,
		Compute: func(tbl types.KLineTable) (ta.Frame, error) {
			return ta.StochRSI(tbl, p.Source, p.RSILength, p.StochLength, p.SmoothK, p.SmoothD, p.MAMode)
		},
	}
}

// StochRSI is a two-channel indicator instance: %K and %D, in that channel
// order.
type StochRSI struct {
	*Engine
	Params StochRSIParams
}

func NewStochRSI(source *candles.Store, exec worker.Executor, params StochRSIParams, opts ...Option) *StochRSI {
	p := params.normalize()
	return &StochRSI{
		Engine: New(source, exec, p.definition(), opts...),
		Params: p,
	}
}

func (inc *StochRSI) ChangeParams(params StochRSIParams) {
	inc.Params = params.normalize()
	def := inc.Params.definition()
	inc.Rebind(nil, &def)
}

// K returns the %K channel.
func (inc *StochRSI) K() floats.Slice {
	return inc.Channel(0)
}

// D returns the %D channel.
func (inc *StochRSI) D() floats.Slice {
	return inc.Channel(1)
}
