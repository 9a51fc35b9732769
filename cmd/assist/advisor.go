package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opscart/assist-advisor/pkg/assistant"
	"github.com/opscart/assist-advisor/pkg/catalog"
	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/records"
	"github.com/opscart/assist-advisor/pkg/recommender"
	"github.com/opscart/assist-advisor/pkg/reporter"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	// Vehicle flags
	vehicleModel   string
	registrationNo string
	currentMileage int

	// Recommend flags
	saveResults  bool
	reportFormat string
	reportsDir   string

	// Eligibility flags
	saleDate string
	tier     string

	// Service record flags
	serviceType  string
	serviceDate  string
	serviceCost  string
	customerName string
	workshopName string
	description  string
	historyLimit int
)

func addVehicleFlags(cmd *cobra.Command, requireReg bool) {
	cmd.Flags().StringVar(&vehicleModel, "model", "", "Vehicle model (e.g. \"Maruti Swift\")")
	cmd.Flags().StringVar(&registrationNo, "reg", "", "Registration number")
	_ = cmd.MarkFlagRequired("model")
	if requireReg {
		_ = cmd.MarkFlagRequired("reg")
	}
}

func vehicle() models.VehicleIdentity {
	return models.VehicleIdentity{
		VehicleModel:   strings.TrimSpace(vehicleModel),
		RegistrationNo: models.NormalizeRegistration(registrationNo),
	}
}

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend maintenance for a vehicle from its service history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(runRecommend)
		},
	}
	addVehicleFlags(cmd, true)
	cmd.Flags().IntVar(&currentMileage, "mileage", 0, "Current odometer reading (km)")
	cmd.Flags().BoolVar(&saveResults, "save", false, "Save recommendations to storage")
	cmd.Flags().StringVar(&reportFormat, "report", "", "Also write a report: html, csv")
	cmd.Flags().StringVar(&reportsDir, "reports-dir", "reports", "Directory for generated reports")
	return cmd
}

func runRecommend(ctx context.Context) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	v := vehicle()
	history, err := store.ListServiceRecords(ctx, v)
	if err != nil {
		return fmt.Errorf("failed to load service history: %w", err)
	}
	log.WithField("vehicle", v.Key()).WithField("records", len(history)).Debug("history loaded")

	now := time.Now()
	recs := engine.Recommend(history, v.VehicleModel, v.RegistrationNo, currentMileage, now)
	for _, r := range recs {
		stats.Recommended(string(r.Priority))
	}

	if saveResults {
		for i := range recs {
			if err := store.SaveRecommendation(ctx, &recs[i]); err != nil {
				return fmt.Errorf("failed to save recommendation: %w", err)
			}
		}
		if cfg.OutputFormat == "text" {
			fmt.Printf("[INFO] Saved %d recommendation(s)\n", len(recs))
		}
	}

	summary := recommender.Summarize(recs)
	if err := publisher().Publish(ctx, events.SubjectRecommendations, events.RecommendationsEvent{
		Vehicle: v.Key(),
		Total:   summary.Total,
		Urgent:  summary.ByPriority[models.PriorityUrgent],
		At:      now,
	}); err != nil {
		log.WithError(err).Warn("failed to publish event")
	}

	out := handler()
	if err := out.DisplayRecommendations(ctx, recs); err != nil {
		return err
	}
	if err := out.DisplaySummary(ctx, summary); err != nil {
		return err
	}

	if reportFormat != "" {
		report := reporter.Generate(recs, history, v, currentMileage, now)
		path, err := writeReport(report, reporter.ReportFormat(reportFormat), now)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "[INFO] Report saved to %s\n", path)
	}
	return nil
}

func writeReport(report *reporter.Report, format reporter.ReportFormat, now time.Time) (string, error) {
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	path := filepath.Join(reportsDir, reporter.DefaultFilename(format, now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	switch format {
	case reporter.FormatHTML:
		err = reporter.GenerateHTML(report, f)
	case reporter.FormatCSV:
		err = reporter.GenerateCSV(report, f)
	default:
		err = fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func estimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate <service type>",
		Short: "Estimate the cost of a service for a vehicle model",
		Example: `  assist estimate "Oil Change" --model "Toyota Fortuner"
  assist estimate "Timing Belt" --model "BMW 3 Series" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := newEstimator()
			if err != nil {
				return err
			}
			service := strings.Join(args, " ")
			if _, ok := catalog.Lookup(catalog.ServiceType(service)); !ok {
				log.WithField("service", service).Warn("unknown service type, using default pricing")
				if t, ok := catalog.Parse(service); ok {
					log.Warnf("did you mean %q?", t)
				}
			}
			return handler().DisplayEstimate(cmd.Context(), est.Estimate(service, vehicleModel))
		},
	}
	cmd.Flags().StringVar(&vehicleModel, "model", "", "Vehicle model")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func eligibilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Check ASSIST eligibility for a vehicle sale date",
		RunE: func(cmd *cobra.Command, args []string) error {
			sale, err := time.Parse(records.DateLayout, saleDate)
			if err != nil {
				return fmt.Errorf("--sale-date must be YYYY-MM-DD")
			}
			requested := models.AssistTier(tier)
			if requested != "" && !eligibility.ValidTier(requested) {
				return fmt.Errorf("unknown ASSIST level: %s", tier)
			}

			result := eligibility.Compute(sale, time.Now())
			stats.EligibilityChecked(result.Eligibility)
			return handler().DisplayEligibility(cmd.Context(), result, eligibility.ResolveTier(requested, result.Eligibility))
		},
	}
	cmd.Flags().StringVar(&saleDate, "sale-date", "", "Vehicle sale date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&tier, "tier", "", "Requested ASSIST level (e.g. \"ASSIST 2\")")
	_ = cmd.MarkFlagRequired("sale-date")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the service assistant a question",
		Long:  `With a message, print one reply. Without one, start an interactive session on stdin (Ctrl-D to quit).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := assistant.New()
			if len(args) > 0 {
				rule, reply := a.Match(strings.Join(args, " "))
				stats.ChatReply(rule)
				fmt.Println(reply)
				return nil
			}
			return interactiveChat(a)
		},
	}
}

func interactiveChat(a *assistant.Assistant) error {
	conv := assistant.NewConversation(a, time.Now)
	fmt.Println(conv.Messages()[0].Content)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := scanner.Text()
		reply, ok := conv.Send(line)
		if !ok {
			continue
		}
		rule, _ := a.Match(line)
		stats.ChatReply(rule)
		fmt.Println(reply.Content)
	}
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage vehicle service history",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a completed service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(runServiceAdd)
		},
	}
	addVehicleFlags(add, true)
	add.Flags().StringVar(&serviceType, "type", "", "Service type (e.g. \"Oil Change\")")
	add.Flags().StringVar(&serviceDate, "date", "", "Service date (YYYY-MM-DD, default today)")
	add.Flags().IntVar(&currentMileage, "mileage", 0, "Odometer reading at service (km)")
	add.Flags().StringVar(&serviceCost, "cost", "0", "Amount charged")
	add.Flags().StringVar(&customerName, "customer", "", "Customer name")
	add.Flags().StringVar(&workshopName, "workshop", "", "Workshop name")
	add.Flags().StringVar(&description, "description", "", "Work notes")
	_ = add.MarkFlagRequired("type")

	cmd.AddCommand(add)
	return cmd
}

func runServiceAdd(ctx context.Context) error {
	date := time.Now()
	if serviceDate != "" {
		var err error
		if date, err = time.Parse(records.DateLayout, serviceDate); err != nil {
			return fmt.Errorf("--date must be YYYY-MM-DD")
		}
	}
	if currentMileage < 0 {
		return fmt.Errorf("--mileage must be >= 0")
	}
	cost, err := decimal.NewFromString(serviceCost)
	if err != nil {
		return fmt.Errorf("invalid --cost: %w", err)
	}

	v := vehicle()
	rec := models.ServiceRecord{
		VehicleModel:   v.VehicleModel,
		RegistrationNo: v.RegistrationNo,
		CustomerName:   customerName,
		ServiceType:    catalog.Canonical(serviceType),
		ServiceDate:    date,
		Mileage:        currentMileage,
		Description:    description,
		Cost:           cost,
		WorkshopName:   workshopName,
	}
	if err := store.SaveServiceRecord(ctx, &rec); err != nil {
		return fmt.Errorf("failed to save service record: %w", err)
	}
	fmt.Printf("[INFO] Saved %s for %s (ID: %s)\n", rec.ServiceType, v.Key(), rec.ID)
	return nil
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				saved, err := store.ListRecommendations(ctx, vehicle(), historyLimit)
				if err != nil {
					return fmt.Errorf("failed to load recommendations: %w", err)
				}
				recs := make([]models.ServiceRecommendation, 0, len(saved))
				for _, r := range saved {
					recs = append(recs, *r)
				}
				return handler().DisplayRecommendations(ctx, recs)
			})
		},
	}
	cmd.Flags().StringVar(&vehicleModel, "model", "", "Filter by vehicle model")
	cmd.Flags().StringVar(&registrationNo, "reg", "", "Filter by registration number")
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries")
	return cmd
}

func alertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List overdue services across all vehicles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				history, err := store.ListServiceRecords(ctx, models.VehicleIdentity{})
				if err != nil {
					return fmt.Errorf("failed to load service history: %w", err)
				}
				return handler().DisplayAlerts(ctx, recommender.UrgentNeeds(history, time.Now()))
			})
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize ASSIST enrolments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				recs, err := store.ListAssistRecords(ctx, 0)
				if err != nil {
					return fmt.Errorf("failed to load records: %w", err)
				}
				history, err := store.ListServiceRecords(ctx, models.VehicleIdentity{})
				if err != nil {
					return fmt.Errorf("failed to load service history: %w", err)
				}
				enquiries, err := store.ListEnquiries(ctx, models.EnquiryFilter{})
				if err != nil {
					return fmt.Errorf("failed to load enquiries: %w", err)
				}
				dash := reporter.Stats(recs, history, time.Now())
				dash.OpenEnquiries = models.CountOpen(enquiries)
				return printDashboard(dash)
			})
		},
	}
}

func printDashboard(s models.DashboardStats) error {
	if cfg.OutputFormat == "json" {
		return printJSON(s)
	}

	fmt.Println("ASSIST Dashboard")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Total records:     %d\n", s.TotalRecords)
	fmt.Printf("Eligible:          %d\n", s.EligibleCount)
	fmt.Printf("Not eligible:      %d\n", s.NotEligibleCount)
	for _, t := range []models.AssistTier{models.Assist1, models.Assist2, models.Assist3} {
		fmt.Printf("  %-16s %d\n", t+":", s.TierCounts[t])
	}
	fmt.Printf("Amount collected:  Rs. %s\n", s.AmountCollected.StringFixed(2))
	fmt.Printf("Unique vehicles:   %d\n", s.UniqueVehicles)
	fmt.Printf("Average age:       %.1f years\n", s.AverageAgeYears)
	fmt.Printf("Urgent alerts:     %d\n", s.UrgentAlerts)
	fmt.Printf("Open enquiries:    %d\n", s.OpenEnquiries)
	return nil
}
