package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"workforce-planner/config"
	customerrors "workforce-planner/errors"
	"workforce-planner/formatter"
	"workforce-planner/logger"
	"workforce-planner/metrics"
	"workforce-planner/planner"
	"workforce-planner/solver"
	"workforce-planner/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitInvalid    = 2
	exitInfeasible = 3
	exitUnbounded  = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	// Define flags
	configPath := flag.String("config", "", "Planner config file (YAML); defaults to the reference scenario")
	format := flag.String("format", "text", "Output format: text|json|csv|yaml|xlsx")
	timeLimit := flag.Duration("time-limit", 0, "Solver time limit (overrides solver.time_limit, 0 = keep config)")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")
	printConfig := flag.Bool("print-config", false, "Print the effective scenario as YAML and exit")
	history := flag.Int("history", 0, "List the N most recent recorded runs and exit (requires store)")

	// Parse command-line flags
	flag.Parse()

	// Validate format enum
	render, ok := formatter.Formats[*format]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: format must be one of: text, json, csv, yaml, xlsx (got: %s)\n", *format)
		return exitInvalid
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return exitInvalid
	}
	if *timeLimit > 0 {
		cfg.Solver.TimeLimit = *timeLimit
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *pushGateway != "" {
		cfg.Metrics.PushURL = *pushGateway
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return exitInvalid
	}
	defer func() { _ = log.Sync() }()

	if *printConfig {
		if err := config.DumpScenario(os.Stdout, cfg.Scenario.ScenarioParameters); err != nil {
			log.Error("failed to print config", zap.Error(err))
			return exitFailure
		}
		return exitOK
	}

	// Start metrics server if address provided
	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			log.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	var repo *store.Repository
	if cfg.Store.Driver != "" {
		repo, err = store.Open(cfg.Store.Driver, cfg.Store.DSN, log)
		if err != nil {
			log.Error("failed to open run store", zap.Error(err))
			return exitFailure
		}
		defer repo.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *history > 0 {
		if repo == nil {
			log.Error("-history requires store.driver and store.dsn")
			return exitInvalid
		}
		return printHistory(ctx, repo, *history, log)
	}

	s := solver.NewBranchAndBound(log, solver.Options{
		MaxNodes:             cfg.Solver.MaxNodes,
		TimeLimit:            cfg.Solver.TimeLimit,
		IntegralityTolerance: cfg.Solver.IntegralityTolerance,
	})

	params := cfg.Scenario.ScenarioParameters
	plan, runErr := planner.Run(ctx, params, s)

	if repo != nil {
		if _, err := repo.SaveRun(context.WithoutCancel(ctx), params, plan, runErr); err != nil {
			log.Error("failed to record run", zap.Error(err))
		}
	}

	code := exitOK
	if runErr != nil {
		code = exitCode(runErr)
		log.Error("planning failed", zap.String("outcome", store.Outcome(runErr)), zap.Error(runErr))
	} else {
		log.Info("plan ready",
			zap.String("run_id", plan.RunID.String()),
			zap.Float64("objective", plan.Objective),
			zap.Int("hires", plan.Summary.TotalHires),
			zap.Int("underemployed", plan.Summary.TotalUnderemployed))
		out, err := render(plan)
		if err != nil {
			log.Error("failed to render plan", zap.String("format", *format), zap.Error(err))
			code = exitFailure
		} else {
			fmt.Print(out)
		}
	}

	// Handle metrics pushing or waiting
	if cfg.Metrics.PushURL != "" {
		if err := metrics.Push(ctx, cfg.Metrics.PushURL, cfg.Metrics.Job); err != nil {
			log.Error("error pushing to Pushgateway", zap.Error(err))
		} else {
			log.Info("metrics successfully pushed to Pushgateway")
		}
	}

	if *wait && cfg.Metrics.Addr != "" {
		log.Info("process kept alive for metric scraping, press Ctrl+C to exit")
		<-ctx.Done()
	} else if cfg.Metrics.Addr != "" && cfg.Metrics.PushURL == "" {
		// Small delay to allow final scrape if not waiting explicitly
		time.Sleep(100 * time.Millisecond)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, customerrors.ErrInvalidScenario):
		return exitInvalid
	case errors.Is(err, customerrors.ErrInfeasible):
		return exitInfeasible
	case errors.Is(err, customerrors.ErrUnbounded):
		return exitUnbounded
	default:
		return exitFailure
	}
}

func printHistory(ctx context.Context, repo *store.Repository, limit int, log *zap.Logger) int {
	runs, err := repo.ListRuns(ctx, limit)
	if err != nil {
		log.Error("failed to list runs", zap.Error(err))
		return exitFailure
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.CreatedAt.Format(time.RFC3339),
			r.ID.String(),
			r.Status,
			strconv.FormatFloat(r.Objective, 'f', -1, 64),
			strconv.Itoa(r.TotalHires),
			strconv.Itoa(r.TotalUnderemployed),
			r.ScenarioHash[:min(12, len(r.ScenarioHash))],
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Created", "Run", "Status", "Objective", "Hires", "Underemployed", "Scenario").
		Rows(rows...)
	fmt.Println(t.Render())
	return exitOK
}
