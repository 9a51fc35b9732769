package reporter

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
)

// PolicyOptions brands the generated certificate
type PolicyOptions struct {
	Brand        string
	Helpline     string
	Emergency    string
	SupportEmail string
}

// DefaultPolicyOptions returns the stock branding
func DefaultPolicyOptions() PolicyOptions {
	return PolicyOptions{
		Brand:        "MARUTI SUZUKI",
		Helpline:     "084306 93069 / 044-61726397",
		Emergency:    "084306 93069",
		SupportEmail: "support@marutisuzuki.com",
	}
}

const (
	displayDate     = "02/01/2006"
	displayDateTime = "02/01/2006 15:04:05"
	pageBottom      = 270.0
)

var sectionHeading = regexp.MustCompile(`^\d+\.`)

type policyPDF struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

// WritePolicyPDF renders the three page policy document: certificate,
// tax invoice, terms and conditions
func WritePolicyPDF(rec *models.AssistRecord, policy *Policy, opts PolicyOptions, writer io.Writer) error {
	if opts.Brand == "" {
		opts = DefaultPolicyOptions()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	doc := &policyPDF{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	doc.certificatePage(rec, policy, opts)
	doc.invoicePage(rec, policy)
	doc.termsPage(policy, opts)

	if err := pdf.Output(writer); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (d *policyPDF) font(style string, size float64) {
	d.pdf.SetFont("Helvetica", style, size)
}

func (d *policyPDF) centered(y float64, text string) {
	d.pdf.SetXY(15, y-4)
	d.pdf.CellFormat(180, 6, d.tr(text), "", 0, "C", false, 0, "")
}

func (d *policyPDF) text(x, y float64, text string) {
	d.pdf.Text(x, y, d.tr(text))
}

func (d *policyPDF) heading(text string) {
	d.font("B", 12)
	d.pdf.SetTextColor(0, 51, 102)
	d.text(20, d.y, text)
	d.pdf.SetTextColor(0, 0, 0)
	d.y += 8
}

// table draws label/value rows in a light grid, wrapping long values
func (d *policyPDF) table(rows [][2]string) {
	d.pdf.SetDrawColor(200, 200, 200)
	d.pdf.SetLineWidth(0.3)
	for _, row := range rows {
		lines := d.pdf.SplitText(d.tr(row[1]), 120)
		if len(lines) == 0 {
			lines = []string{""}
		}
		height := 8.0 + float64(len(lines)-1)*5
		d.pdf.Rect(20, d.y-5, 170, height, "D")
		d.font("B", 10)
		d.pdf.Text(25, d.y+1, d.tr(row[0]))
		d.font("", 10)
		for i, line := range lines {
			d.pdf.Text(70, d.y+1+float64(i)*5, line)
		}
		d.y += height
	}
	d.y += 8
}

func (d *policyPDF) certificatePage(rec *models.AssistRecord, policy *Policy, opts PolicyOptions) {
	d.pdf.AddPage()

	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetLineWidth(1)
	d.pdf.Rect(15, 15, 180, 30, "D")
	d.font("B", 20)
	d.pdf.SetTextColor(0, 51, 102)
	d.centered(28, opts.Brand)
	d.font("", 10)
	d.centered(35, "24x7 ROADSIDE ASSISTANCE PROGRAM")
	d.centered(40, "ASSIST - Age-based Service Support & Eligibility Tracking")

	d.font("B", 16)
	d.pdf.SetTextColor(0, 0, 0)
	d.centered(55, "POLICY CERTIFICATE")

	d.y = 70
	d.pdf.SetLineWidth(0.5)
	d.pdf.Rect(15, d.y-5, 180, 12, "D")
	d.font("B", 10)
	d.text(20, d.y+2, "Certificate Number:")
	d.font("", 10)
	d.text(75, d.y+2, policy.CertificateNumber)
	d.font("B", 10)
	d.text(130, d.y+2, "Issue Date:")
	d.font("", 10)
	d.text(160, d.y+2, policy.IssuedAt.Format(displayDate))
	d.y += 20

	gst := rec.CustomerGSTNo
	if gst == "" {
		gst = "Not Applicable"
	}
	d.heading("POLICY HOLDER DETAILS")
	d.table([][2]string{
		{"Name:", rec.CustomerName},
		{"Address:", rec.CustomerAddress},
		{"Contact Number:", rec.CustomerContactNo},
		{"Email ID:", rec.EmailAddress},
		{"GST Number:", gst},
	})

	d.heading("VEHICLE DETAILS")
	d.table([][2]string{
		{"Make & Model:", opts.Brand + " " + rec.Model},
		{"Variant:", rec.Variant},
		{"Registration Number:", rec.RegistrationNo},
		{"Chassis Number:", rec.ChassisNo},
		{"Fuel Type:", rec.Fuel},
		{"Transmission:", rec.Transmission},
		{"Vehicle Sale Date:", rec.VehicleSaleDate.Format(displayDate)},
		{"Vehicle Age:", fmt.Sprintf("%d years", rec.VehicleAge)},
	})

	d.heading("COVERAGE DETAILS")
	d.table([][2]string{
		{"Plan Type:", string(rec.Assist)},
		{"Eligibility Status:", rec.Eligibility},
		{"Coverage Period:", "12 Months"},
		{"Policy Start Date:", policy.StartDate.Format(displayDate)},
		{"Policy Expiry Date:", policy.ExpiryDate.Format(displayDate)},
		{"Service Limit:", "4 Services per year"},
		{"Towing Limit:", "Up to 50 KM (3 times per year)"},
	})
}

func rupees(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

func (d *policyPDF) lines(x float64, text string) {
	for _, line := range d.pdf.SplitText(d.tr(text), 170) {
		d.pdf.Text(x, d.y, line)
		d.y += 5
	}
}

func (d *policyPDF) invoicePage(rec *models.AssistRecord, policy *Policy) {
	d.pdf.AddPage()

	d.font("B", 16)
	d.pdf.SetTextColor(0, 51, 102)
	d.centered(25, "TAX INVOICE")
	d.pdf.SetTextColor(0, 0, 0)

	d.y = 40
	issued := policy.IssuedAt.Format(displayDate)
	for _, row := range [][2]string{
		{"Invoice Number:", policy.InvoiceNumber},
		{"Invoice Date:", issued},
		{"Due Date:", issued},
	} {
		d.font("B", 10)
		d.text(20, d.y, row[0])
		d.font("", 10)
		d.text(70, d.y, row[1])
		d.y += 6
	}
	d.y += 8

	d.heading("BILLING DETAILS")
	d.font("B", 10)
	d.text(20, d.y, "Service Provider:")
	d.y += 7
	d.font("", 10)
	d.text(20, d.y, rec.WorkshopName)
	d.y += 5
	d.lines(20, rec.RegisteredAddress)
	d.text(20, d.y, "GSTIN: "+rec.DealershipGSTIN)
	d.y += 5
	d.text(20, d.y, "SAC Code: "+rec.SACCode)
	d.y += 5
	d.text(20, d.y, "CIN: "+rec.CINNumber)
	d.y += 12

	d.font("B", 10)
	d.text(20, d.y, "Bill To:")
	d.y += 7
	d.font("", 10)
	d.text(20, d.y, rec.CustomerName)
	d.y += 5
	d.lines(20, rec.CustomerAddress)
	if rec.CustomerGSTNo != "" {
		d.text(20, d.y, "GSTIN: "+rec.CustomerGSTNo)
		d.y += 5
	}
	d.y += 12

	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetLineWidth(0.5)
	d.pdf.Rect(20, d.y, 160, 10, "D")
	d.font("B", 10)
	d.text(25, d.y+6, "Description")
	d.text(100, d.y+6, "HSN/SAC")
	d.text(150, d.y+6, "Amount")
	d.y += 10

	d.font("", 10)
	for _, row := range [][3]string{
		{"24x7 Roadside Assistance - " + string(rec.Assist), rec.SACCode, rupees(policy.Basic)},
		{"CGST (9%)", "", rupees(policy.CGST)},
		{"SGST (9%)", "", rupees(policy.SGST)},
	} {
		d.pdf.Rect(20, d.y, 160, 8, "D")
		d.text(25, d.y+5, row[0])
		d.text(100, d.y+5, row[1])
		d.text(150, d.y+5, row[2])
		d.y += 8
	}

	d.pdf.Rect(20, d.y, 160, 10, "D")
	d.font("B", 10)
	d.text(25, d.y+6, "TOTAL AMOUNT")
	d.text(150, d.y+6, rupees(policy.Total))
	d.y += 20

	d.text(20, d.y, "Payment Details:")
	d.y += 7
	d.font("", 10)
	for _, line := range []string{
		"Payment Mode: " + rec.PaymentType,
		"Transaction Reference: " + rec.PaymentProof,
		"Payment Date: " + rec.Timestamp.Format(displayDate),
		"Service Advisor: " + rec.EmployeeName,
	} {
		d.text(20, d.y, line)
		d.y += 5
	}
}

// Terms returns the terms and conditions text, one paragraph or bullet per
// entry with blank entries separating sections
func Terms(opts PolicyOptions) []string {
	return []string{
		"1. COVERAGE SCOPE",
		"This policy provides 24x7 roadside assistance for mechanical and electrical breakdowns, battery jumpstart, tyre puncture assistance, fuel delivery (up to 5 liters), key assistance, and towing services.",
		"",
		"2. SERVICE LIMITATIONS",
		"• Maximum 4 services per policy year",
		"• Towing limited to 50 KM distance (maximum 3 times per year)",
		"• Services available within India (excluding certain remote areas)",
		"• Response time varies based on location and traffic conditions",
		"",
		"3. EXCLUSIONS",
		"• Accidents, theft, vandalism, or acts of God",
		"• Damage due to negligence or misuse",
		"• Racing, rallying, or commercial use",
		"• Vehicles over 15 years old (from date of first registration)",
		"• Cost of spare parts and consumables",
		"",
		"4. CLAIM PROCEDURE",
		"To avail services, call the helpline number: " + opts.Helpline,
		"Provide vehicle registration number, location, and nature of breakdown.",
		"",
		"5. VALIDITY",
		"This policy is valid for 12 months from the start date mentioned above.",
		"Services can be availed only during the validity period.",
		"",
		"6. CONTACT INFORMATION",
		"For assistance: " + opts.Helpline,
		"Email: " + opts.SupportEmail,
		"",
		"7. IMPORTANT NOTES",
		"• Keep this certificate in your vehicle at all times",
		"• Present this certificate when availing services",
		"• Policy is non-transferable and non-refundable",
		"• Terms and conditions are subject to change without prior notice",
		"",
		"8. EMERGENCY CONTACT",
		"In case of breakdown, call: " + opts.Emergency,
		"Available 24x7 across India",
		"Keep your policy certificate and vehicle registration ready",
	}
}

func (d *policyPDF) breakIfPast(limit float64) {
	if d.y > limit {
		d.pdf.AddPage()
		d.y = 20
	}
}

func (d *policyPDF) termsPage(policy *Policy, opts PolicyOptions) {
	d.pdf.AddPage()

	d.font("B", 14)
	d.pdf.SetTextColor(0, 51, 102)
	d.centered(30, "TERMS AND CONDITIONS")
	d.pdf.SetTextColor(0, 0, 0)
	d.y = 45

	for _, entry := range Terms(opts) {
		if entry == "" {
			d.y += 4
			continue
		}
		switch {
		case sectionHeading.MatchString(entry):
			d.font("B", 10)
		case strings.HasPrefix(entry, "•"):
			d.font("", 8)
		default:
			d.font("", 9)
		}
		for _, line := range d.pdf.SplitText(d.tr(entry), 170) {
			d.breakIfPast(pageBottom)
			d.pdf.Text(20, d.y, line)
			d.y += 4
		}
		d.y += 2
	}

	d.y += 10
	d.breakIfPast(250)
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetLineWidth(0.5)
	d.pdf.Line(20, d.y, 190, d.y)
	d.y += 8

	d.font("I", 7)
	d.pdf.SetTextColor(100, 100, 100)
	d.centered(d.y, "This is a computer-generated document and does not require a signature.")
	d.centered(d.y+4, "Generated on: "+policy.IssuedAt.Format(displayDateTime))
	d.centered(d.y+8, "For queries, contact your service provider or call our helpline.")
}
