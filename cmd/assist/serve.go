package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/opscart/assist-advisor/pkg/api"
	"github.com/opscart/assist-advisor/pkg/assistant"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/recommender"
	"github.com/spf13/cobra"
)

var listenAddr string

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the advisor HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listenAddr == "" {
				listenAddr = cfg.ListenAddr
			}
			return withStore(runServe)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default $ASSIST_ADDR or :8080)")
	return cmd
}

func runServe(ctx context.Context) error {
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	est, err := newEstimator()
	if err != nil {
		return err
	}
	invoices, err := invoiceSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource(invoices)

	srv := api.New(api.Options{
		Store:       store,
		Estimator:   est,
		Engine:      recommender.New(recommender.WithEstimator(est)),
		Assistant:   assistant.New(),
		Invoices:    invoices,
		Events:      publisher(),
		Metrics:     stats,
		Logger:      log,
		Policy:      policyOptions(),
		ServiceName: cfg.ServiceName,
		CORSOrigin:  cfg.CORSOrigin,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
	})

	log.WithField("backend", cfg.StorageBackend).
		WithField("events", cfg.NATSURL != "").
		Info("ASSIST advisor starting")
	return srv.ListenAndServe(ctx, listenAddr)
}

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the ASSIST event stream",
	}

	watch := &cobra.Command{
		Use:   "watch [subject]",
		Short: "Print events as they are published (default all ASSIST subjects)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := events.SubjectAll
			if len(args) == 1 {
				subject = args[0]
			}
			return watchEvents(subject)
		},
	}

	cmd.AddCommand(watch)
	return cmd
}

func watchEvents(subject string) error {
	if cfg.NATSURL == "" {
		return fmt.Errorf("NATS_URL is not set")
	}
	p, err := events.Connect(cfg.NATSURL)
	if err != nil {
		return err
	}
	defer p.Close()

	sub, err := events.Subscribe(p.Conn(), subject, func(ctx context.Context, subject string, v json.RawMessage) {
		fmt.Printf("%s %s\n", subject, v)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	defer sub.Unsubscribe()

	fmt.Printf("[INFO] Watching %s (Ctrl-C to stop)\n", subject)
	ctx, cancel := signalContext()
	defer cancel()
	<-ctx.Done()
	return nil
}
