package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opscart/assist-advisor/pkg/config"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/logger"
	"github.com/opscart/assist-advisor/pkg/metrics"
	"github.com/opscart/assist-advisor/pkg/output"
	"github.com/opscart/assist-advisor/pkg/pricing"
	"github.com/opscart/assist-advisor/pkg/recommender"
	"github.com/opscart/assist-advisor/pkg/reporter"
	"github.com/opscart/assist-advisor/pkg/sequence"
	"github.com/opscart/assist-advisor/pkg/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputFormat string
	preset       string
	verbose      bool
	printMetrics bool

	// Global config
	cfg   *config.Config
	log   *logrus.Logger
	store storage.Store
	stats *metrics.Metrics
	pub   events.Publisher
)

func main() {
	cfg = config.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "assist",
		Short: "ASSIST vehicle service advisor",
		Long:  `Track ASSIST roadside-assistance enrolments, check eligibility, and recommend maintenance from service history.`,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if pub != nil {
				pub.Close()
			}
			pushMetrics(cmd)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "Configuration preset: dev, production")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&printMetrics, "print-metrics", false, "Print this run's metrics to stderr on exit")

	rootCmd.AddCommand(
		recommendCmd(),
		estimateCmd(),
		eligibilityCmd(),
		chatCmd(),
		recordsCmd(),
		serviceCmd(),
		enquiryCmd(),
		certificateCmd(),
		historyCmd(),
		alertsCmd(),
		dashboardCmd(),
		auditCmd(),
		eventsCmd(),
		serveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	switch preset {
	case "":
	case "dev":
		cfg.UseDevPreset()
	case "production":
		cfg.UseProductionPreset()
	default:
		return fmt.Errorf("unknown preset: %s", preset)
	}
	cfg.OutputFormat = outputFormat
	if verbose {
		cfg.Verbose = true
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var err error
	log, err = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput})
	if err != nil {
		return err
	}

	stats, err = metrics.New(cmd.Name() == "serve")
	if err != nil {
		return err
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openStore(ctx context.Context) (storage.Store, error) {
	url := cfg.DatabaseURL
	if cfg.StorageBackend == "mongo" {
		url = cfg.MongoURI
	}

	s, err := storage.New(ctx, storage.Config{
		Type:     cfg.StorageBackend,
		URL:      url,
		Database: cfg.MongoDatabase,
		Timeout:  cfg.StorageTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.WithField("backend", cfg.StorageBackend).Debug("storage ready")
	return s, nil
}

// withStore opens storage for the duration of fn
func withStore(fn func(ctx context.Context) error) error {
	ctx, cancel := signalContext()
	defer cancel()

	var err error
	store, err = openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx)
}

func newEstimator() (*pricing.Estimator, error) {
	provider, err := pricing.NewProvider(&pricing.Config{
		Provider:  cfg.PricingProvider,
		Overrides: cfg.PriceOverrides,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure pricing: %w", err)
	}
	log.WithField("provider", provider.Name()).Debug("pricing ready")
	return pricing.NewEstimator(provider), nil
}

func newEngine() (*recommender.Engine, error) {
	est, err := newEstimator()
	if err != nil {
		return nil, err
	}
	return recommender.New(recommender.WithEstimator(est)), nil
}

// invoiceSource picks the shared counter: Redis when configured, the
// Postgres store's own sequence next, else a process-local counter
func invoiceSource(ctx context.Context) (sequence.Source, error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		return sequence.NewRedis(client, "assist:invoice"), nil
	}
	if pg, ok := store.(*storage.PostgresStore); ok {
		return sequence.NewPostgres(ctx, pg.DB(), "invoice_number_seq")
	}
	log.Warn("invoice numbers are process-local; set REDIS_ADDR or use postgres to share them")
	return sequence.NewMemory(cfg.InvoiceStart), nil
}

// closeSource releases the connection an invoice source holds, if any
func closeSource(src sequence.Source) {
	c, ok := src.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.WithError(err).Debug("failed to close invoice source")
	}
}

// publisher connects to NATS on first use. Without NATS_URL, or when the
// server is unreachable, events are dropped.
func publisher() events.Publisher {
	if pub != nil {
		return pub
	}
	pub = events.Discard{}
	if cfg.NATSURL == "" {
		return pub
	}
	p, err := events.Connect(cfg.NATSURL)
	if err != nil {
		log.WithError(err).Warn("events disabled")
		return pub
	}
	pub = p
	return pub
}

func policyOptions() reporter.PolicyOptions {
	return reporter.PolicyOptions{
		Brand:        cfg.PolicyBrand,
		Helpline:     cfg.PolicyHelpline,
		Emergency:    cfg.PolicyEmergency,
		SupportEmail: cfg.PolicySupportEmail,
	}
}

func handler() output.Handler {
	h, err := output.New(cfg.OutputFormat, os.Stdout)
	if err != nil {
		return output.NewTextHandler(os.Stdout)
	}
	return h
}

// pushMetrics sends this run's counters to the Pushgateway, if configured
func pushMetrics(cmd *cobra.Command) {
	if stats == nil || cmd.Name() == "serve" {
		return
	}
	if printMetrics {
		if err := stats.WriteText(os.Stderr); err != nil {
			log.WithError(err).Warn("failed to print metrics")
		}
	}
	if cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := stats.Push(ctx, cfg.PushgatewayURL, "assist_"+cmd.Name()); err != nil {
		log.WithError(err).Warn("failed to push metrics")
	}
}
