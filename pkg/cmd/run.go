package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/config"
	"github.com/khanhlinhdang/atkcore/pkg/feed"
	"github.com/khanhlinhdang/atkcore/pkg/indicator"
	"github.com/khanhlinhdang/atkcore/pkg/ta"
	"github.com/khanhlinhdang/atkcore/pkg/types"
	"github.com/khanhlinhdang/atkcore/pkg/worker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "stream candles and keep the configured indicators in sync",
	RunE:  run,
}

func init() {
	RootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if bind := viper.GetString("metrics-bind"); bind != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(bind, nil); err != nil {
				log.WithError(err).Error("metrics listener stopped")
			}
		}()
		log.Infof("serving metrics on %s/metrics", bind)
	}

	pool := worker.NewPool(cfg.Workers, 4*cfg.Workers)
	pool.Start()
	defer func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := pool.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("worker pool shutdown timed out")
		}
	}()

	store := candles.NewStore()

	engines := make([]*indicator.Engine, 0, len(cfg.Indicators))
	for _, ind := range cfg.Indicators {
		eng := buildIndicator(store, pool, ind)
		watch(eng)
		engines = append(engines, eng)
	}
	defer func() {
		for _, eng := range engines {
			eng.Unbind()
		}
	}()

	binanceFeed := feed.NewBinance(store, cfg.Symbol, cfg.Interval)
	if err := binanceFeed.Start(ctx, cfg.History); err != nil {
		return err
	}

	log.Infof("running %d indicators on %s %s", len(engines), cfg.Symbol, cfg.Interval)
	<-ctx.Done()
	return nil
}

func buildIndicator(store *candles.Store, pool worker.Executor, ind config.IndicatorConfig) *indicator.Engine {
	source := types.Source(ind.Source)
	mamode := ta.MAMode(ind.MAMode)

	switch ind.Kind {
	case "macd":
		return indicator.NewMACD(store, pool, indicator.MACDParams{
			Source:       source,
			FastPeriod:   ind.FastPeriod,
			SlowPeriod:   ind.SlowPeriod,
			SignalPeriod: ind.SignalPeriod,
			MAMode:       mamode,
		}).Engine
	case "stochrsi":
		return indicator.NewStochRSI(store, pool, indicator.StochRSIParams{
			Source:      source,
			RSILength:   ind.RSILength,
			StochLength: ind.StochLength,
			SmoothK:     ind.SmoothK,
			SmoothD:     ind.SmoothD,
			MAMode:      mamode,
		}).Engine
	case "cci":
		return indicator.NewCCI(store, pool, indicator.CCIParams{
			Length: ind.Length,
		}).Engine
	case "keltner":
		return indicator.NewKeltner(store, pool, indicator.KeltnerParams{
			Length:     ind.Length,
			ATRLength:  ind.ATRLength,
			Multiplier: ind.Multiplier,
		}).Engine
	}

	// config validation only admits known kinds; rsi is the remaining one
	return indicator.NewRSI(store, pool, indicator.RSIParams{
		Source: source,
		Length: ind.Length,
		MAMode: mamode,
	}).Engine
}

// watch logs every series notification; this is where a chart view would
// hook its redraw handlers.
func watch(eng *indicator.Engine) {
	name := eng.Name()
	eng.OnReset(func() {
		log.Infof("%s: series reset, %d rows", name, eng.Length())
	})
	eng.OnAppended(func() {
		if idx, values, ok := eng.Last(); ok {
			log.Infof("%s: appended row %d %v", name, idx, values)
		}
	})
	eng.OnUpdated(func() {
		if idx, values, ok := eng.Last(); ok {
			log.Debugf("%s: updated row %d %v", name, idx, values)
		}
	})
	eng.OnHistoric(func(count int) {
		log.Infof("%s: %d historic rows loaded", name, count)
	})
	eng.OnError(func(err error) {
		log.WithError(err).Errorf("%s: computation failed", name)
	})
}
