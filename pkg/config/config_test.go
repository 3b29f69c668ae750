package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atkcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
symbol: BTCUSDT
interval: 5m
history: 300
workers: 2
indicators:
  - kind: rsi
    length: 14
    mamode: rma
  - kind: macd
    fast: 12
    slow: 26
    signal: 9
  - kind: keltner
    length: 20
    atrLength: 10
    multiplier: 2.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, "5m", cfg.Interval)
	assert.Equal(t, 300, cfg.History)
	assert.Len(t, cfg.Indicators, 3)
	assert.Equal(t, 26, cfg.Indicators[1].SlowPeriod)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `symbol: ETHUSDT`))
	require.NoError(t, err)
	assert.Equal(t, "1m", cfg.Interval)
	assert.Equal(t, 500, cfg.History)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_RequiresSymbol(t *testing.T) {
	_, err := Load(writeConfig(t, `interval: 1m`))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownKind(t *testing.T) {
	_, err := Load(writeConfig(t, `
symbol: BTCUSDT
indicators:
  - kind: vwap
`))
	assert.ErrorContains(t, err, "unsupported kind")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_PermissiveParams(t *testing.T) {
	// out-of-range periods are not a config error; the indicator
	// constructors normalize them
	cfg, err := Load(writeConfig(t, `
symbol: BTCUSDT
indicators:
  - kind: rsi
    length: -5
`))
	require.NoError(t, err)
	assert.Equal(t, -5, cfg.Indicators[0].Length)
}
