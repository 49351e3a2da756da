package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"klineDataCore/config"
	"klineDataCore/internal/app"
	"klineDataCore/internal/bootstrap"
	"klineDataCore/internal/domain"
	"klineDataCore/internal/pipeline"
	"klineDataCore/internal/utils"
)

func main() {
	supported := make([]string, 0, len(domain.Timeframes()))
	for _, tf := range domain.Timeframes() {
		supported = append(supported, tf.String())
	}
	tfFlag := flag.String("timeframe", "1h", "timeframe to export ("+strings.Join(supported, ",")+")")
	symbolFlag := flag.String("symbol", "", "export only this symbol (default: all)")
	outFlag := flag.String("out", "", "output CSV path (default: data/<symbol|all>_<timeframe>_<date>.csv)")
	fresh := flag.Bool("fresh", false, "ignore the snapshot cache and fetch from the source")
	flag.Parse()

	timeframe, err := domain.ParseTimeframe(*tfFlag)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := bootstrap.NewLogger(cfg)
	ctx := context.Background()

	// 3. Source, cache and pipeline
	source, err := bootstrap.NewSource(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize kline source")
		log.Fatalf("FATAL: Failed to initialize kline source: %v", err)
	}
	var opts []app.Option
	if !*fresh {
		repo, err := bootstrap.NewRepository(cfg, appLogger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize snapshot cache: %v", err)
		}
		if repo != nil {
			defer repo.Close()
			opts = append(opts, app.WithRepository(repo))
		}
	}
	indicators, err := pipeline.NewIndicatorService(appLogger, pipeline.WithMaxCandles(cfg.MaxCandles))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize indicator pipeline: %v", err)
	}
	svc, err := app.NewKlineService(cfg, appLogger, source, indicators, opts...)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize kline service: %v", err)
	}

	// 4. Fetch and enrich
	root, err := svc.GetDataCoreRoot(ctx, timeframe)
	if err != nil {
		appLogger.Error(ctx, err, "Error building snapshot")
		log.Fatalf("Error building snapshot: %v", err)
	}

	data := root.Data
	label := "all"
	if *symbolFlag != "" {
		label = strings.ToUpper(*symbolFlag)
		data = nil
		for _, kd := range root.Data {
			if strings.EqualFold(kd.Symbol, label) {
				data = append(data, kd)
			}
		}
		if len(data) == 0 {
			log.Fatalf("Symbol %s not present in the %s snapshot (dropped: %v)", label, timeframe, root.Audit.DroppedSymbols)
		}
	}

	// 5. Write CSV
	filename := *outFlag
	if filename == "" {
		filename = fmt.Sprintf("data/%s_%s_%s.csv", label, timeframe, time.UnixMilli(root.CloseTime).UTC().Format("20060102T1504"))
	}
	if err := utils.WriteCandlesToCSVFile(data, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{
		"filename": filename,
		"symbols":  len(data),
		"columns":  len(utils.IndicatorKeys(data)),
	})
}
