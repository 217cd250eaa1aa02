// Package main provides the trendmix CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/trendmix/internal/aggregator"
	"github.com/gauthierbraillon/trendmix/internal/cache"
	"github.com/gauthierbraillon/trendmix/internal/config"
	"github.com/gauthierbraillon/trendmix/internal/display"
	"github.com/gauthierbraillon/trendmix/internal/logger"
	"github.com/gauthierbraillon/trendmix/internal/metrics"
	"github.com/gauthierbraillon/trendmix/internal/origin"
	"github.com/gauthierbraillon/trendmix/internal/security"
	"github.com/gauthierbraillon/trendmix/internal/server"
	"github.com/gauthierbraillon/trendmix/internal/youtube"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

// upstreamRequestsPerSecond paces calls to the Data API.
const upstreamRequestsPerSecond = 10

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags value and falls back to the module
// version recorded by go install.
func resolveVersion(ldflagsVersion string, info *debug.BuildInfo) string {
	if ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

func buildVersion() string {
	info, _ := debug.ReadBuildInfo()
	return resolveVersion(version, info)
}

// newRootCmd creates the root command for trendmix CLI.
func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "trendmix",
		Short:        "Rank what is trending on YouTube",
		Long:         "Trendmix fetches a YouTube trending chart, labels every publisher as local or foreign and ranks the results into regular, shorts, recent and rising views.",
		Version:      buildVersion(),
		SilenceUsage: true,
	}

	rootCmd.SetVersionTemplate("trendmix version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default $"+config.EnvConfigPath+")")

	rootCmd.AddCommand(newViewsCmd(&configPath))
	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newConfigCmd(&configPath))

	return rootCmd
}

// newViewsCmd creates the views subcommand.
func newViewsCmd(configPath *string) *cobra.Command {
	var view, originFilter string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "views",
		Short: "Display a ranked trending view",
		Long:  "Fetch the trending chart once and print one view: regular, shorts, recent or rising, optionally filtered by publisher origin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := aggregator.ParseViewKind(view)
			if err != nil {
				return err
			}
			filter, err := aggregator.ParseOriginFilter(originFilter)
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("invalid limit %d: must be zero or positive", limit)
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := logger.SetupDefault(os.Stderr, cfg.LogLevel)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			c := newPipeline(cfg, log, nil)
			snap, err := c.Fetch(ctx, false)
			if snap == nil {
				return fmt.Errorf("failed to fetch trending chart: %w", err)
			}

			records := snap.View(aggregator.ViewOptions{
				Kind:         kind,
				Origin:       filter,
				Limit:        limit,
				RecentWindow: cfg.RecentWindow,
				RisingWindow: cfg.RisingWindow,
			})

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			formatter := display.NewTerminalFormatter(cfg.RegionCode, cfg.Location())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatView(records, kind))
			fmt.Fprint(cmd.OutOrStdout(), "\n"+formatter.FormatUpdated(snap.FetchedAt, err != nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", string(aggregator.ViewRegular), "View to display (regular, shorts, recent, rising)")
	cmd.Flags().StringVarP(&originFilter, "origin", "o", string(aggregator.OriginAll), "Filter by publisher origin (all, local, foreign)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of videos to display (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print every derived field as JSON")

	return cmd
}

// newServeCmd creates the serve subcommand.
func newServeCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve trending views over HTTP",
		Long:  "Run the HTTP API with a cached snapshot, a rate-limited refresh endpoint and Prometheus metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.ServerPort = port
			}
			log := logger.SetupDefault(os.Stderr, cfg.LogLevel)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			collector := metrics.NewCollector(reg)

			c := newPipeline(cfg, log, collector)
			srv := server.New(c, server.Options{
				HomeRegion:           cfg.RegionCode,
				RecentWindow:         cfg.RecentWindow,
				RisingWindow:         cfg.RisingWindow,
				RefreshRatePerMinute: cfg.RefreshRatePerMinute,
				Sanitizer:            security.NewTextSanitizer(),
				Metrics:              metrics.Handler(reg),
				Logger:               log,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Warm the cache so the first request is served from memory.
			if _, err := c.Fetch(ctx, false); err != nil {
				log.Warn("initial fetch failed", slog.String("error", err.Error()))
			}

			return srv.Run(ctx, ":"+cfg.ServerPort)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides server_port)")

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Print the configuration after defaults, the YAML file and the environment are applied. The API key is masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			return nil
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newPipeline wires client, resolver, aggregator and loader behind the
// TTL cache. collector may be nil.
func newPipeline(cfg *config.Config, log *slog.Logger, collector *metrics.Collector) *cache.Cache {
	clientOpts := []youtube.ClientOption{
		youtube.WithTimeout(cfg.RequestTimeout),
		youtube.WithRateLimit(rate.NewLimiter(rate.Limit(upstreamRequestsPerSecond), upstreamRequestsPerSecond)),
	}
	if cfg.APIBaseURL != "" {
		clientOpts = append(clientOpts, youtube.WithBaseURL(cfg.APIBaseURL))
	}
	cacheOpts := []cache.Option{
		cache.WithTTL(cfg.CacheTTL),
		cache.WithRetryBackoff(cfg.RetryBackoff),
		cache.WithLogger(log),
	}
	if collector != nil {
		clientOpts = append(clientOpts, youtube.WithRecorder(collector))
		cacheOpts = append(cacheOpts, cache.WithRecorder(collector))
	}

	client := youtube.NewClient(cfg.APIKey, clientOpts...)
	resolver := origin.NewResolver(client, cfg.RegionCode, origin.WithLogger(log))
	agg := aggregator.New(resolver,
		aggregator.WithChart(cfg.RegionCode, cfg.CategoryID),
		aggregator.WithSnippetChars(cfg.SnippetChars),
		aggregator.WithLogger(log),
	)
	loader := aggregator.NewLoader(client, agg, youtube.ChartQuery{
		RegionCode: cfg.RegionCode,
		CategoryID: cfg.CategoryID,
		MaxResults: cfg.MaxResults,
		MaxPages:   cfg.MaxPages,
	}, aggregator.WithLoaderLogger(log))

	return cache.New(loader, cacheOpts...)
}
