package indicator

import (
	"fmt"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/ta"
	"github.com/khanhlinhdang/atkcore/pkg/types"
	"github.com/khanhlinhdang/atkcore/pkg/worker"
)

// CCIParams configures a Commodity Channel Index engine. CCI always reads
// the typical price, so there is no source selector.
type CCIParams struct {
	Length int `json:"length" yaml:"length"`
}

func (p CCIParams) normalize() CCIParams {
	if p.Length <= 0 {
		p.Length = 20
	}
	return p
}

func (p CCIParams) definition() Definition {
	return Definition{
		Kind:     "cci",
		Name:     fmt.Sprintf("CCI %d", p.Length),
		Warmup:   p.Length,
		Channels: 1,
		Compute: func(tbl types.KLineTable) (ta.Frame, error) {
			return ta.CCI(tbl, p.Length)
		},
	}
}

// CCI is a single-channel indicator instance.
type CCI struct {
	*Engine
	Params CCIParams
}

func NewCCI(source *candles.Store, exec worker.Executor, params CCIParams, opts ...Option) *CCI {
	p := params.normalize()
	return &CCI{
		Engine: New(source, exec, p.definition(), opts...),
		Params: p,
	}
}

func (inc *CCI) ChangeParams(params CCIParams) {
	inc.Params = params.normalize()
	def := inc.Params.definition()
	inc.Rebind(nil, &def)
}

// Values returns the cci channel.
func (inc *CCI) Values() floats.Slice {
	return inc.Channel(0)
}
