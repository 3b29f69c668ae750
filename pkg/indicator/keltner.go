package indicator

import (
	"fmt"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/ta"
	"github.com/khanhlinhdang/atkcore/pkg/types"
	"github.com/khanhlinhdang/atkcore/pkg/worker"
)

// KeltnerParams configures a Keltner Channel engine.
type KeltnerParams struct {
	Length     int     `json:"length" yaml:"length"`
	ATRLength  int     `json:"atrLength" yaml:"atrLength"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

func (p KeltnerParams) normalize() KeltnerParams {
	if p.Length <= 0 {
		p.Length = 20
	}
	if p.ATRLength <= 0 {
		p.ATRLength = 10
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	return p
}

func (p KeltnerParams) definition() Definition {
	warmup := p.Length
	if p.ATRLength > warmup {
		warmup = p.ATRLength
	}
	return Definition{
		Kind: "keltner",
		Name: fmt.Sprintf("KC %d %d %.1f", p.Length, p.ATRLength, p.Multiplier),
		// one extra row so the first true range sees a previous close
		Warmup:   warmup + 1,
		Channels: 3,
		Compute: func(tbl types.KLineTable) (ta.Frame, error) {
			return ta.Keltner(tbl, p.Length, p.ATRLength, p.Multiplier)
		},
	}
}

// Keltner is a three-channel indicator instance: basis, upper band, lower
// band, in that channel order.
type Keltner struct {
	*Engine
	Params KeltnerParams
}

func NewKeltner(source *candles.Store, exec worker.Executor, params KeltnerParams, opts ...Option) *Keltner {
	p := params.normalize()
	return &Keltner{
		Engine: New(source, exec, p.definition(), opts...),
		Params: p,
	}
}

func (inc *Keltner) ChangeParams(params KeltnerParams) {
	inc.Params = params.normalize()
	def := inc.Params.definition()
	inc.Rebind(nil, &def)
}

// Basis returns the midline channel.
func (inc *Keltner) Basis() floats.Slice {
	return inc.Channel(0)
}

// Upper returns the upper band channel.
func (inc *Keltner) Upper() floats.Slice {
	return inc.Channel(1)
}

// Lower returns the lower band channel.
func (inc *Keltner) Lower() floats.Slice {
	return inc.Channel(2)
}
