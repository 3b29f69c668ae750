package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// IndicatorConfig declares one indicator overlay. Only the fields relevant to
// the kind are read; numeric fields left at zero fall back to the chart
// defaults of that kind.
type IndicatorConfig struct {
	Kind   string `yaml:"kind" json:"kind"`
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
	MAMode string `yaml:"mamode,omitempty" json:"mamode,omitempty"`

	Length int `yaml:"length,omitempty" json:"length,omitempty"`

	// macd
	FastPeriod   int `yaml:"fast,omitempty" json:"fast,omitempty"`
	SlowPeriod   int `yaml:"slow,omitempty" json:"slow,omitempty"`
	SignalPeriod int `yaml:"signal,omitempty" json:"signal,omitempty"`

	// stochrsi
	RSILength   int `yaml:"rsiLength,omitempty" json:"rsiLength,omitempty"`
	StochLength int `yaml:"stochLength,omitempty" json:"stochLength,omitempty"`
	SmoothK     int `yaml:"smoothK,omitempty" json:"smoothK,omitempty"`
	SmoothD     int `yaml:"smoothD,omitempty" json:"smoothD,omitempty"`

	// keltner
	ATRLength  int     `yaml:"atrLength,omitempty" json:"atrLength,omitempty"`
	Multiplier float64 `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`
}

var supportedKinds = map[string]struct{}{
	"rsi":      {},
	"macd":     {},
	"stochrsi": {},
	"cci":      {},
	"keltner":  {},
}

type Config struct {
	Symbol   string `yaml:"symbol" json:"symbol"`
	Interval string `yaml:"interval" json:"interval"`

	// History is the number of candles backfilled before streaming starts.
	History int `yaml:"history" json:"history"`

	// Workers sizes the shared computation pool.
	Workers int `yaml:"workers" json:"workers"`

	Indicators []IndicatorConfig `yaml:"indicators" json:"indicators"`
}

func (c *Config) Validate() error {
	if c.Symbol == "" {
		return errors.New("config: symbol is required")
	}
	if c.Interval == "" {
		c.Interval = "1m"
	}
	if c.History <= 0 {
		c.History = 500
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	for i, ind := range c.Indicators {
		if _, ok := supportedKinds[ind.Kind]; !ok {
			return errors.Errorf("config: indicators[%d]: unsupported kind %q", i, ind.Kind)
		}
	}
	return nil
}

// Load reads and validates a yaml config file. Unknown indicator kinds fail
// loudly; out-of-range numeric parameters do not, they are normalized by the
// indicator constructors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: can not read %s", path)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "config: can not parse %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
