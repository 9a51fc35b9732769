package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/spf13/cobra"
)

var (
	// Enquiry flags
	enquiryEmail  string
	enquiryPhone  string
	enquiryStatus string
	onlyMine      bool
)

var validate = validator.New()

func enquiryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "enquiry",
		Aliases: []string{"enquiries"},
		Short:   "Track customer service enquiries",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Log a new service enquiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(runEnquiryAdd)
		},
	}
	addVehicleFlags(add, true)
	add.Flags().StringVar(&customerName, "customer", "", "Customer name")
	add.Flags().StringVar(&enquiryEmail, "email", "", "Customer email address")
	add.Flags().StringVar(&enquiryPhone, "phone", "", "Customer phone number")
	add.Flags().StringVar(&serviceType, "type", "", "Service requested: "+strings.Join(models.EnquiryServiceTypes(), ", "))
	add.Flags().StringVar(&description, "description", "", "Issue or service needed")
	add.Flags().StringVar(&workshopName, "workshop", "", "Workshop name (default \""+models.DefaultWorkshop+"\")")
	for _, f := range []string{"customer", "email", "phone", "type"} {
		_ = add.MarkFlagRequired(f)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List enquiries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(runEnquiryList)
		},
	}
	list.Flags().StringVar(&enquiryStatus, "status", "", "Only show this status: pending, in-progress, completed, cancelled")
	list.Flags().BoolVar(&onlyMine, "mine", false, "Only show enquiries logged by the current user")
	list.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of enquiries (0 for all)")

	status := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an enquiry to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				return runEnquiryStatus(ctx, args[0], args[1])
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an enquiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				return runEnquiryDelete(ctx, args[0])
			})
		},
	}

	cmd.AddCommand(add, list, status, del)
	return cmd
}

func runEnquiryAdd(ctx context.Context) error {
	if strings.TrimSpace(customerName) == "" {
		return fmt.Errorf("--customer is required")
	}
	if err := validate.Var(enquiryEmail, "required,email"); err != nil {
		return fmt.Errorf("--email must be a valid email address")
	}
	if strings.TrimSpace(enquiryPhone) == "" {
		return fmt.Errorf("--phone is required")
	}
	service, ok := models.EnquiryServiceType(serviceType)
	if !ok {
		return fmt.Errorf("unknown service type %q; choose one of: %s", serviceType, strings.Join(models.EnquiryServiceTypes(), ", "))
	}
	workshop := strings.TrimSpace(workshopName)
	if workshop == "" {
		workshop = models.DefaultWorkshop
	}

	v := vehicle()
	e := &models.Enquiry{
		CustomerName:   strings.TrimSpace(customerName),
		Email:          enquiryEmail,
		Phone:          strings.TrimSpace(enquiryPhone),
		VehicleModel:   v.VehicleModel,
		RegistrationNo: v.RegistrationNo,
		ServiceType:    service,
		Description:    description,
		Status:         models.EnquiryPending,
		WorkshopName:   workshop,
		CreatedBy:      os.Getenv("USER"),
	}
	if err := store.CreateEnquiry(ctx, e); err != nil {
		return fmt.Errorf("failed to save enquiry: %w", err)
	}
	stats.EnquiryChanged(e.Status)
	publishEnquiry(ctx, events.SubjectEnquiryCreated, e)

	if cfg.OutputFormat == "json" {
		return printJSON(e)
	}
	fmt.Printf("[INFO] Logged %s enquiry for %s (ID: %s)\n", e.ServiceType, v.Key(), e.ID)
	return nil
}

func runEnquiryList(ctx context.Context) error {
	if enquiryStatus != "" && !models.ValidEnquiryStatus(enquiryStatus) {
		return fmt.Errorf("unknown status: %s", enquiryStatus)
	}
	filter := models.EnquiryFilter{Status: enquiryStatus, Limit: listLimit}
	if onlyMine {
		filter.CreatedBy = os.Getenv("USER")
	}

	enquiries, err := store.ListEnquiries(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load enquiries: %w", err)
	}
	return handler().DisplayEnquiries(ctx, enquiries)
}

func runEnquiryStatus(ctx context.Context, id, status string) error {
	if !models.ValidEnquiryStatus(status) {
		return fmt.Errorf("unknown status: %s", status)
	}
	e, err := store.UpdateEnquiryStatus(ctx, id, status)
	if err != nil {
		return err
	}
	stats.EnquiryChanged(e.Status)
	publishEnquiry(ctx, events.SubjectEnquiryUpdated, e)

	fmt.Printf("[INFO] Enquiry %s is now %s\n", e.ID, e.Status)
	return nil
}

func runEnquiryDelete(ctx context.Context, id string) error {
	e, err := store.GetEnquiry(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteEnquiry(ctx, id); err != nil {
		return err
	}
	publishEnquiry(ctx, events.SubjectEnquiryDeleted, e)

	fmt.Printf("[INFO] Deleted enquiry %s\n", id)
	return nil
}

func publishEnquiry(ctx context.Context, subject string, e *models.Enquiry) {
	err := publisher().Publish(ctx, subject, events.EnquiryEvent{
		EnquiryID:      e.ID,
		RegistrationNo: e.RegistrationNo,
		ServiceType:    e.ServiceType,
		Status:         e.Status,
		Workshop:       e.WorkshopName,
		At:             time.Now(),
	})
	if err != nil {
		log.WithError(err).Warn("failed to publish event")
	}
}
