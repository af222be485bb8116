// Command backtest runs the range breakout strategy over a CSV of daily bars.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"range-breakout/internal/config"
	"range-breakout/internal/engine"
	"range-breakout/internal/infrastructure"
	"range-breakout/internal/model"
	"range-breakout/internal/strategy"

	"go.uber.org/zap"
)

const (
	exitOK = iota
	exitDataError
	exitConfigError
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Validation waits until the flags have overridden the configured values.
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitConfigError
	}
	params := cfg.StrategyParams()
	settings := cfg.BacktestSettings()

	var (
		csvPath  string
		symbol   string
		outCSV   string
		outJSON  string
		logLevel string
		series   bool
	)
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&csvPath, "csv", "", "input bars: timestamp,open,high,low,close[,volume]")
	fs.StringVar(&symbol, "symbol", "", "symbol label for the report")
	fs.StringVar(&outCSV, "out", "", "optional: write trades to CSV")
	fs.StringVar(&outJSON, "json", "", "optional: write the full report as JSON")
	fs.StringVar(&logLevel, "log-level", "warn", "debug | info | warn | error")
	fs.BoolVar(&series, "series", false, "include annotated series rows in the JSON report")

	fs.IntVar(&params.EMAPeriod, "ema", params.EMAPeriod, "EMA period")
	fs.IntVar(&params.TrendBackcandles, "trend-backcandles", params.TrendBackcandles, "bars in the trend window")
	fs.IntVar(&params.PivotWindow, "pivot-window", params.PivotWindow, "bars each side of a pivot")
	fs.IntVar(&params.PatternBackcandles, "pattern-backcandles", params.PatternBackcandles, "bars scanned for pattern pivots")
	fs.IntVar(&params.PatternWindow, "pattern-window", params.PatternWindow, "bars skipped before the breakout bar")

	fs.Float64Var(&settings.InitialBalance, "balance", settings.InitialBalance, "initial balance")
	fs.Float64Var(&settings.RiskPercent, "risk", settings.RiskPercent, "risk per trade, percent of balance")
	fs.Float64Var(&settings.StopLossPercent, "sl", settings.StopLossPercent, "stop loss, percent of entry")
	fs.Float64Var(&settings.TakeProfitPercent, "tp", settings.TakeProfitPercent, "take profit, percent of entry")

	if err := fs.Parse(args); err != nil {
		return exitConfigError
	}
	if csvPath == "" {
		fmt.Fprintln(stderr, "error: -csv is required")
		return exitConfigError
	}

	if err := infrastructure.Init(logLevel); err != nil {
		fmt.Fprintf(stderr, "bad -log-level: %v\n", err)
		return exitConfigError
	}
	logger := infrastructure.Logger
	defer logger.Sync()

	strat, err := strategy.NewRangeBreakoutStrategy(params, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfigError
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfigError
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitDataError
	}
	klines, err := engine.ReadCSV(f, symbol)
	f.Close()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitDataError
	}

	report, err := engine.RunBacktest(model.BarsFromKLines(klines), strat, settings, engine.RunOptions{
		Symbol:        symbol,
		IncludeSeries: series,
	}, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, strategy.ErrInvalidParams) || errors.Is(err, engine.ErrInvalidSettings) {
			return exitConfigError
		}
		return exitDataError
	}

	printSummary(stdout, report, len(klines))

	if outCSV != "" {
		if err := writeFile(outCSV, func(w io.Writer) error { return engine.WriteTradesCSV(w, report.Ledger.Trades) }); err != nil {
			fmt.Fprintf(stderr, "write %s: %v\n", outCSV, err)
			return exitDataError
		}
		logger.Info("trades written", zap.String("path", outCSV), zap.Int("trades", len(report.Ledger.Trades)))
	}
	if outJSON != "" {
		if err := writeFile(outJSON, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}); err != nil {
			fmt.Fprintf(stderr, "write %s: %v\n", outJSON, err)
			return exitDataError
		}
	}
	return exitOK
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, report *model.BacktestReport, bars int) {
	s := report.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "symbol\t%s\n", report.Symbol)
	fmt.Fprintf(tw, "bars\t%d\n", bars)
	fmt.Fprintf(tw, "signals\t%d\n", report.Signals)
	fmt.Fprintf(tw, "total trades\t%d\n", s.TotalTrades)
	fmt.Fprintf(tw, "win rate\t%.2f%%\n", s.WinRate)
	fmt.Fprintf(tw, "total p/l\t$%s\n", s.TotalProfit.StringFixed(2))
	fmt.Fprintf(tw, "return\t%.2f%%\n", s.TotalReturn)
	fmt.Fprintf(tw, "max drawdown\t%.2f%%\n", s.MaxDrawdown)
	fmt.Fprintf(tw, "final balance\t$%s\n", s.FinalBalance.StringFixed(2))
	tw.Flush()
}
