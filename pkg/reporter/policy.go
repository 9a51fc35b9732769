package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/sequence"
	"github.com/shopspring/decimal"
)

var (
	gstDivisor = decimal.RequireFromString("1.18")
	halfGST    = decimal.RequireFromString("0.09")
)

// Policy holds the numbers printed on a policy certificate and its invoice
type Policy struct {
	InvoiceNumber     string
	CertificateNumber string
	IssuedAt          time.Time
	StartDate         time.Time
	ExpiryDate        time.Time
	Basic             decimal.Decimal
	CGST              decimal.Decimal
	SGST              decimal.Decimal
	Total             decimal.Decimal
}

// NewPolicy draws the next invoice number and splits the collected amount,
// which already includes 18% GST, into basic price and the two 9% halves.
// The certificate serial is one ahead of the invoice number.
func NewPolicy(ctx context.Context, rec *models.AssistRecord, seq sequence.Source, now time.Time) (*Policy, error) {
	n, err := seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	basic := rec.AmountCollected.Div(gstDivisor)
	year := now.Year()

	return &Policy{
		InvoiceNumber:     fmt.Sprintf("%07d", n),
		CertificateNumber: fmt.Sprintf("ASSIST-%02d-%02d-%05d", year%100, (year+1)%100, n+1),
		IssuedAt:          now,
		StartDate:         rec.Timestamp,
		ExpiryDate:        rec.Timestamp.AddDate(1, 0, 0),
		Basic:             basic,
		CGST:              basic.Mul(halfGST),
		SGST:              basic.Mul(halfGST),
		Total:             rec.AmountCollected,
	}, nil
}
