package feed

import (
	"testing"

	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

func klineEvent(startTime int64, close string, final bool) *binance.WsKlineEvent {
	return &binance.WsKlineEvent{
		Symbol: "BTCUSDT",
		Kline: binance.WsKline{
			StartTime: startTime,
			Symbol:    "BTCUSDT",
			Interval:  "1m",
			Open:      "100.0",
			High:      "101.0",
			Low:       "99.0",
			Close:     close,
			Volume:    "12.5",
			IsFinal:   final,
		},
	}
}

func TestHandleKlineEvent_AppendsAndAmends(t *testing.T) {
	store := candles.NewStore()
	store.Reset([]types.OHLCV{{Index: 0, Close: 99}})

	f := NewBinance(store, "BTCUSDT", "1m")
	f.lastOpenTime = 60_000

	var appends, amends int
	store.OnAppend(func(types.OHLCV) { appends++ })
	store.OnAmend(func(types.OHLCV) { amends++ })

	// new bar opens
	f.handleKlineEvent(klineEvent(120_000, "100.5", false))
	assert.Equal(t, 1, appends)
	assert.Equal(t, 2, store.Len())

	// same bar ticks twice
	f.handleKlineEvent(klineEvent(120_000, "100.7", false))
	f.handleKlineEvent(klineEvent(120_000, "100.9", true))
	assert.Equal(t, 2, amends)
	assert.Equal(t, 2, store.Len())

	last, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, int64(1), last.Index)
	assert.Equal(t, 100.9, last.Close)

	// next bar rolls over
	f.handleKlineEvent(klineEvent(180_000, "101.2", false))
	assert.Equal(t, 2, appends)
	assert.Equal(t, 3, store.Len())

	last, _ = store.Last()
	assert.Equal(t, int64(2), last.Index)
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 1.5, parseFloat("1.5"))
	assert.Equal(t, 0.0, parseFloat("garbage"))
}
