package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/rategate/pkg/config"
	"mercator-hq/rategate/pkg/telemetry/logging"
	"mercator-hq/rategate/pkg/telemetry/metrics"
	"mercator-hq/rategate/pkg/throttle"
)

var (
	runPolicy       string
	runCalls        int
	runWorkers      int
	runCallDuration time.Duration
	runWatch        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a throttled workload",
	Long: `Run issues a batch of calls through a configured policy and reports
how the throttle shaped them. Workers contend for admission concurrently,
so the observed completion rate never exceeds the policy's max_calls per
period regardless of worker count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkload(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVarP(&runPolicy, "policy", "p", "", "policy to admit calls through (default: the only configured policy)")
	runCmd.Flags().IntVar(&runCalls, "calls", 20, "total number of calls to issue")
	runCmd.Flags().IntVar(&runWorkers, "workers", 4, "concurrent workers contending for admission")
	runCmd.Flags().DurationVar(&runCallDuration, "call-duration", 0, "simulated duration of each admitted call")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "reload policies when the config file changes")
	rootCmd.AddCommand(runCmd)
}

func runWorkload(parent context.Context) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Metrics, nil)
		srv := &http.Server{Addr: cfg.Metrics.ListenAddress, Handler: metricsMux(cfg, collector)}
		go func() {
			logger.Info("Metrics server listening", "address", cfg.Metrics.ListenAddress, "path", cfg.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	manager, err := throttle.NewManager(cfg.Policies, logger, collector)
	if err != nil {
		return fmt.Errorf("creating throttle manager: %w", err)
	}

	policy, err := resolvePolicy(manager)
	if err != nil {
		return err
	}

	if runWatch {
		watcher, err := config.NewWatcher(cfgFile, 0, logger)
		if err != nil {
			return fmt.Errorf("creating config watcher: %w", err)
		}
		defer watcher.Close()
		go watcher.Watch(ctx, func() error {
			reloaded, err := config.LoadWithEnvOverrides(cfgFile)
			if err != nil {
				return err
			}
			return manager.Reconfigure(reloaded.Policies)
		})
	}

	logger.Info("Starting workload",
		"policy", policy,
		"calls", runCalls,
		"workers", runWorkers,
		"config", cfgFile)

	report, err := drive(ctx, manager, logger, policy)
	if err != nil {
		return err
	}
	report.print()
	return nil
}

// metricsMux routes the configured metrics path to the collector's handler.
func metricsMux(cfg *config.Config, collector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, collector.Handler())
	return mux
}

// resolvePolicy applies the --policy flag, defaulting to the sole
// configured policy when the flag is omitted.
func resolvePolicy(manager *throttle.Manager) (string, error) {
	if runPolicy != "" {
		if _, err := manager.Gate(runPolicy); err != nil {
			return "", err
		}
		return runPolicy, nil
	}
	names := manager.Policies()
	if len(names) == 1 {
		return names[0], nil
	}
	return "", fmt.Errorf("--policy is required when multiple policies are configured (have %v)", names)
}

type workloadReport struct {
	policy    string
	completed int64
	elapsed   time.Duration
	waits     []time.Duration
}

// drive issues runCalls admissions through the policy using runWorkers
// concurrent goroutines. Returns early when the context is cancelled.
func drive(ctx context.Context, manager *throttle.Manager, logger *slog.Logger, policy string) (*workloadReport, error) {
	var (
		next      atomic.Int64
		completed atomic.Int64
		mu        sync.Mutex
		waits     []time.Duration
		wg        sync.WaitGroup
	)

	start := time.Now()
	for w := 0; w < runWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if next.Add(1) > int64(runCalls) {
					return
				}
				callID := uuid.NewString()
				waitStart := time.Now()
				if err := manager.Wait(ctx, policy); err != nil {
					return
				}
				waited := time.Since(waitStart)
				logger.Debug("Call admitted", "call_id", callID, "waited", waited)

				mu.Lock()
				waits = append(waits, waited)
				mu.Unlock()

				if runCallDuration > 0 {
					time.Sleep(runCallDuration)
				}
				completed.Add(1)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil && completed.Load() < int64(runCalls) {
		return nil, fmt.Errorf("workload interrupted after %d/%d calls: %w", completed.Load(), runCalls, err)
	}
	return &workloadReport{
		policy:    policy,
		completed: completed.Load(),
		elapsed:   time.Since(start),
		waits:     waits,
	}, nil
}

func (r *workloadReport) print() {
	fmt.Printf("Policy:       %s\n", r.policy)
	fmt.Printf("Calls:        %d\n", r.completed)
	fmt.Printf("Elapsed:      %s\n", r.elapsed.Round(time.Millisecond))
	if r.elapsed > 0 {
		fmt.Printf("Throughput:   %.2f calls/s\n", float64(r.completed)/r.elapsed.Seconds())
	}
	if len(r.waits) > 0 {
		sorted := make([]time.Duration, len(r.waits))
		copy(sorted, r.waits)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		fmt.Printf("Wait p50:     %s\n", sorted[len(sorted)/2].Round(time.Millisecond))
		fmt.Printf("Wait max:     %s\n", sorted[len(sorted)-1].Round(time.Millisecond))
	}
}
