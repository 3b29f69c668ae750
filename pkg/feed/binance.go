package feed

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

var log = logrus.WithField("component", "feed")

// BinanceFeed drives a candle store from the public Binance kline API:
// one REST backfill into Reset, then a websocket stream that amends the
// in-progress bar and appends on bar rollover. Deeper history can be pulled
// on demand with LoadHistory, which prepends.
type BinanceFeed struct {
	symbol   string
	interval string

	store  *candles.Store
	client *binance.Client

	mu           sync.Mutex
	lastOpenTime int64
}

func NewBinance(store *candles.Store, symbol, interval string) *BinanceFeed {
	return &BinanceFeed{
		symbol:   symbol,
		interval: interval,
		store:    store,
		client:   binance.NewClient("", ""),
	}
}

// Start backfills history candles and launches the stream loop. It returns
// after the backfill; streaming continues until the context is cancelled.
func (f *BinanceFeed) Start(ctx context.Context, history int) error {
	klines, err := f.client.NewKlinesService().
		Symbol(f.symbol).
		Interval(f.interval).
		Limit(history).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "feed: backfill %s %s failed", f.symbol, f.interval)
	}

	rows := make([]types.OHLCV, 0, len(klines))
	for i, k := range klines {
		rows = append(rows, types.OHLCV{
			Index:  int64(i),
			Time:   time.UnixMilli(k.OpenTime),
			Open:   parseFloat(k.Open),
			High:   parseFloat(k.High),
			Low:    parseFloat(k.Low),
			Close:  parseFloat(k.Close),
			Volume: parseFloat(k.Volume),
		})
	}

	f.mu.Lock()
	if len(klines) > 0 {
		f.lastOpenTime = klines[len(klines)-1].OpenTime
	}
	f.mu.Unlock()

	f.store.Reset(rows)
	log.Infof("backfilled %d candles for %s %s", len(rows), f.symbol, f.interval)

	go f.streamLoop(ctx)
	return nil
}

// LoadHistory prepends n candles older than the current head bar.
func (f *BinanceFeed) LoadHistory(ctx context.Context, n int) error {
	tbl := f.store.Table()
	if tbl.Len() == 0 {
		return errors.New("feed: no base series to extend")
	}
	head := tbl.Rows[0]

	klines, err := f.client.NewKlinesService().
		Symbol(f.symbol).
		Interval(f.interval).
		EndTime(head.Time.UnixMilli() - 1).
		Limit(n).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "feed: historic load %s %s failed", f.symbol, f.interval)
	}
	if len(klines) == 0 {
		return nil
	}

	rows := make([]types.OHLCV, 0, len(klines))
	base := head.Index - int64(len(klines))
	for i, k := range klines {
		rows = append(rows, types.OHLCV{
			Index:  base + int64(i),
			Time:   time.UnixMilli(k.OpenTime),
			Open:   parseFloat(k.Open),
			High:   parseFloat(k.High),
			Low:    parseFloat(k.Low),
			Close:  parseFloat(k.Close),
			Volume: parseFloat(k.Volume),
		})
	}

	f.store.Prepend(rows)
	return nil
}

func (f *BinanceFeed) streamLoop(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	for {
		doneC, stopC, err := binance.WsKlineServe(f.symbol, f.interval, f.handleKlineEvent, func(err error) {
			log.WithError(err).Warn("stream error")
		})
		if err != nil {
			wait := bo.NextBackOff()
			log.WithError(err).Warnf("stream connect failed, retrying in %s", wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
				continue
			}
		}

		bo.Reset()
		log.Infof("stream connected for %s %s", f.symbol, f.interval)

		select {
		case <-ctx.Done():
			close(stopC)
			return
		case <-doneC:
			wait := bo.NextBackOff()
			log.Warnf("stream closed, reconnecting in %s", wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}
}

func (f *BinanceFeed) handleKlineEvent(event *binance.WsKlineEvent) {
	k := event.Kline

	row := types.OHLCV{
		Time:   time.UnixMilli(k.StartTime),
		Open:   parseFloat(k.Open),
		High:   parseFloat(k.High),
		Low:    parseFloat(k.Low),
		Close:  parseFloat(k.Close),
		Volume: parseFloat(k.Volume),
	}

	f.mu.Lock()
	sameBar := k.StartTime == f.lastOpenTime
	f.lastOpenTime = k.StartTime
	f.mu.Unlock()

	if sameBar {
		last, ok := f.store.Last()
		if !ok {
			return
		}
		row.Index = last.Index
		f.store.AmendLast(row)
		return
	}

	row.Index = f.store.NextIndex()
	f.store.Append(row)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
