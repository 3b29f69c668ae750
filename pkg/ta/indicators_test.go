package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhlinhdang/atkcore/pkg/types"
)

func flatTable(n int, value float64) types.KLineTable {
	rows := make([]types.OHLCV, n)
	for i := range rows {
		rows[i] = types.OHLCV{Index: int64(i), Open: value, High: value, Low: value, Close: value}
	}
	return types.NewKLineTable(rows)
}

func closesTable(closes ...float64) types.KLineTable {
	rows := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		rows[i] = types.OHLCV{Index: int64(i), Open: c, High: c, Low: c, Close: c}
	}
	return types.NewKLineTable(rows)
}

func rampTable(n int) types.KLineTable {
	rows := make([]types.OHLCV, n)
	for i := range rows {
		c := 100.0 + float64(i)
		rows[i] = types.OHLCV{Index: int64(i), Open: c, High: c, Low: c, Close: c}
	}
	return types.NewKLineTable(rows)
}

func TestRSI_Length(t *testing.T) {
	frame, err := RSI(rampTable(100), types.SourceClose, 14, MAWilder)
	require.NoError(t, err)
	assert.Equal(t, 86, frame.Len())
	require.Len(t, frame.Channels, 1)
	assert.Len(t, frame.Channels[0], 86)
	assert.Equal(t, float64(99), frame.Index.Last())
}

func TestRSI_AllGainsIsHundred(t *testing.T) {
	frame, err := RSI(rampTable(30), types.SourceClose, 14, MAWilder)
	require.NoError(t, err)
	for _, v := range frame.Channels[0] {
		assert.Equal(t, 100.0, v)
	}
}

func TestRSI_AllLossesIsZero(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200.0 - float64(i)
	}
	frame, err := RSI(closesTable(closes...), types.SourceClose, 14, MAWilder)
	require.NoError(t, err)
	for _, v := range frame.Channels[0] {
		assert.Equal(t, 0.0, v)
	}
}

func TestRSI_BalancedAlternation(t *testing.T) {
	// +1/-1 alternation with an SMA kernel: equal average gain and loss
	closes := []float64{10, 11, 10, 11, 10, 11, 10}
	frame, err := RSI(closesTable(closes...), types.SourceClose, 2, MASimple)
	require.NoError(t, err)
	for _, v := range frame.Channels[0] {
		assert.Equal(t, 50.0, v)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	_, err := RSI(rampTable(10), types.SourceClose, 14, MAWilder)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestMACD_ChannelLayout(t *testing.T) {
	frame, err := MACD(rampTable(50), types.SourceClose, 12, 26, 9, MAExp)
	require.NoError(t, err)

	// warm-up is slow+signal-1 = 34 rows
	assert.Equal(t, 17, frame.Len())
	require.Len(t, frame.Channels, 3)

	macd, histogram, signal := frame.Channels[0], frame.Channels[1], frame.Channels[2]
	for i := range macd {
		assert.InDelta(t, macd[i]-signal[i], histogram[i], 1e-5)
	}
}

func TestMACD_SwapsInvertedPeriods(t *testing.T) {
	a, err := MACD(rampTable(50), types.SourceClose, 26, 12, 9, MAExp)
	require.NoError(t, err)
	b, err := MACD(rampTable(50), types.SourceClose, 12, 26, 9, MAExp)
	require.NoError(t, err)
	assert.Equal(t, b.Channels, a.Channels)
}

func TestMACD_InsufficientData(t *testing.T) {
	_, err := MACD(rampTable(30), types.SourceClose, 12, 26, 9, MAExp)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestStochRSI_Length(t *testing.T) {
	frame, err := StochRSI(rampTable(40), types.SourceClose, 14, 14, 3, 3, MAWilder)
	require.NoError(t, err)

	// d = n - rsi - stoch - smoothK - smoothD + 3
	assert.Equal(t, 9, frame.Len())
	require.Len(t, frame.Channels, 2)
	assert.Len(t, frame.Channels[0], 9)
	assert.Len(t, frame.Channels[1], 9)
}

func TestStochRSI_FlatRSIPinsToZero(t *testing.T) {
	// a pure ramp pins RSI at 100, so the stochastic window is flat
	frame, err := StochRSI(rampTable(40), types.SourceClose, 14, 14, 3, 3, MAWilder)
	require.NoError(t, err)
	for _, v := range frame.Channels[0] {
		assert.Equal(t, 0.0, v)
	}
}

func TestCCI_ConstantSlope(t *testing.T) {
	// on a constant-slope typical price the deviation window is symmetric:
	// tip-sma = (length-1)/2 = 1.5 and mad = length/4 = 1.0, so cci = 100
	frame, err := CCI(rampTable(20), 4)
	require.NoError(t, err)
	assert.Equal(t, 17, frame.Len())
	for _, v := range frame.Channels[0] {
		assert.InDelta(t, 100.0, v, 1e-6)
	}
}

func TestCCI_FlatIsZero(t *testing.T) {
	frame, err := CCI(flatTable(20, 100), 5)
	require.NoError(t, err)
	for _, v := range frame.Channels[0] {
		assert.Equal(t, 0.0, v)
	}
}

func TestKeltner_FlatCollapses(t *testing.T) {
	frame, err := Keltner(flatTable(30, 100), 20, 10, 2.0)
	require.NoError(t, err)

	require.Len(t, frame.Channels, 3)
	basis, upper, lower := frame.Channels[0], frame.Channels[1], frame.Channels[2]
	for i := range basis {
		assert.Equal(t, 100.0, basis[i])
		assert.Equal(t, 100.0, upper[i])
		assert.Equal(t, 100.0, lower[i])
	}
}

func TestKeltner_BandsBracketBasis(t *testing.T) {
	rows := make([]types.OHLCV, 40)
	for i := range rows {
		c := 100.0 + 3*math.Sin(float64(i)/3)
		rows[i] = types.OHLCV{Index: int64(i), Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	frame, err := Keltner(types.NewKLineTable(rows), 20, 10, 2.0)
	require.NoError(t, err)

	basis, upper, lower := frame.Channels[0], frame.Channels[1], frame.Channels[2]
	for i := range basis {
		assert.Greater(t, upper[i], basis[i])
		assert.Less(t, lower[i], basis[i])
	}
}

func TestFrame_RoundsToSixDigits(t *testing.T) {
	frame, err := RSI(closesTable(1, 2, 2.5, 2.25, 3, 2.75, 3.5, 3.3, 4, 3.9), types.SourceClose, 3, MAWilder)
	require.NoError(t, err)
	for _, v := range frame.Channels[0] {
		scaled := v * 1e6
		assert.InDelta(t, math.Round(scaled), scaled, 1e-6)
	}
}
