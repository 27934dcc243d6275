package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mm_game/internal/app"
	"mm_game/internal/domain"
	"mm_game/internal/infra"
	"mm_game/internal/service"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the configured strategies and returns the process exit code.
// Any error that stops a run from completing is fatal; strategy faults are not.
func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("app", flag.ContinueOnError)
	configPath := fs.String("config", "configs/config.yaml", "path to the YAML configuration")
	strategies := fs.String("strategy", "", "comma-separated strategies to run (simple, spread, fixed); default strategy.name")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		return 1
	}
	defer bootstrap.Close()
	cfg := bootstrap.Config

	// 2. Graceful Shutdown Context: Ctrl+C cuts the run off at the next day boundary
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Metrics endpoint (optional)
	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(bootstrap.Metrics)}
		go func() {
			slog.Info("📈 Metrics server started", slog.String("addr", cfg.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", slog.Any("error", err))
			}
		}()
		defer srv.Close()
	}

	// 4. Strategies
	var names []string
	if *strategies != "" {
		names = strings.Split(*strategies, ",")
	}
	strats, order, err := bootstrap.Strategies(names)
	if err != nil {
		slog.Error("❌ Invalid strategy selection", slog.Any("error", err))
		return 1
	}

	// 5. Runs
	svc := service.NewRunService(cfg, nil, nil, bootstrap.Metrics)
	if bootstrap.Storage != nil {
		svc = service.NewRunService(cfg, bootstrap.Storage, bootstrap.Storage, bootstrap.Metrics)
	}

	results, err := svc.RunAll(ctx, strats, order)
	for _, res := range results {
		printSummary(out, res)
	}

	if err != nil {
		slog.Error("❌ Run aborted", slog.Bool("fatal", domain.IsFatal(err)), slog.Any("error", err))
		return 1
	}

	slog.Info("✨ All runs completed", slog.Int("runs", len(results)))
	return 0
}

func metricsMux(m *infra.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", infra.MetricsHandler(infra.NewRegistry(m)))
	return mux
}

func printSummary(w io.Writer, res *domain.RunResult) {
	fmt.Fprintf(w, "=== %s (%s) ===\n", res.Strategy, res.RunID)
	fmt.Fprintf(w, "days simulated : %d\n", res.Days)
	fmt.Fprintf(w, "total profit   : %s\n", res.FinalCash.StringFixed(2))
	fmt.Fprintf(w, "holding        : %d\n", res.FinalInventory)
	fmt.Fprintf(w, "mark price     : %s\n", res.MarkPrice.StringFixed(4))
	fmt.Fprintf(w, "final P&L      : %s\n", res.MarkToMarketPnL.StringFixed(2))
	fmt.Fprintf(w, "fills          : %d\n", len(res.Fills))
	fmt.Fprintf(w, "strategy faults: %d\n", res.FaultCount())
	switch {
	case res.Failed:
		fmt.Fprintf(w, "status         : FAILED on day %d (%s)\n", res.FailedDay, res.Err)
	case res.Partial:
		fmt.Fprintln(w, "status         : PARTIAL")
	default:
		fmt.Fprintln(w, "status         : OK")
	}
}
