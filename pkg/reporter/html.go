package reporter

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ASSIST Maintenance Report - {{.RegistrationNo}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            background: #f5f7fa;
            color: #333;
            padding: 20px;
            line-height: 1.6;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #1a3c8f 0%, #0d2159 100%);
            color: white;
            padding: 40px;
        }
        .header h1 { font-size: 2.4em; margin-bottom: 10px; }
        .header .meta { opacity: 0.95; }
        .summary {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(240px, 1fr));
            gap: 20px;
            padding: 30px 40px;
            background: #f8f9fa;
        }
        .summary-card {
            background: white;
            padding: 25px;
            border-radius: 12px;
            border: 2px solid #e8eaed;
        }
        .summary-card h3 {
            color: #5f6368;
            font-size: 0.85em;
            text-transform: uppercase;
            letter-spacing: 1.5px;
            margin-bottom: 10px;
        }
        .summary-card .value { font-size: 2.4em; font-weight: 700; color: #202124; }
        .summary-card.cost { border-left: 6px solid #34a853; }
        .summary-card.total { border-left: 6px solid #1a3c8f; }
        .summary-card.urgent { border-left: 6px solid #d93025; }
        .section { padding: 40px; }
        .section h2 { font-size: 1.6em; margin-bottom: 20px; color: #202124; }
        .alerts li { color: #d93025; margin-left: 20px; }
        .recommendations-table {
            width: 100%;
            border-collapse: collapse;
            margin-top: 20px;
        }
        .recommendations-table th {
            background: #1a3c8f;
            color: white;
            padding: 14px 12px;
            text-align: left;
            font-size: 0.9em;
            text-transform: uppercase;
        }
        .recommendations-table td { padding: 14px 12px; border-bottom: 1px solid #f0f2f4; }
        .priority-badge {
            padding: 6px 12px;
            border-radius: 6px;
            font-size: 0.75em;
            font-weight: 700;
            text-transform: uppercase;
            display: inline-block;
        }
        .priority-urgent { background: #fce8e6; color: #d93025; }
        .priority-high { background: #fef7e0; color: #e37400; }
        .priority-medium { background: #e8f0fe; color: #1a73e8; }
        .priority-low { background: #e6f4ea; color: #1e8e3e; }
        .footer { background: #202124; color: #9aa0a6; padding: 30px; text-align: center; }
        .footer strong { color: #fff; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>ASSIST Maintenance Report</h1>
            <div class="meta">
                <p><strong>Vehicle:</strong> {{.VehicleModel}} | <strong>Registration:</strong> {{.RegistrationNo}} | <strong>Category:</strong> {{.Category}}</p>
                <p><strong>Current Mileage:</strong> {{.CurrentMileage}} | <strong>Generated:</strong> {{.GeneratedAt.Format "02/01/2006 15:04:05"}}</p>
            </div>
        </div>

        <div class="summary">
            <div class="summary-card total">
                <h3>Recommendations</h3>
                <div class="value">{{.Summary.Total}}</div>
            </div>
            <div class="summary-card cost">
                <h3>Estimated Cost</h3>
                <div class="value">{{money .Summary.EstimatedTotal}}</div>
            </div>
            <div class="summary-card urgent">
                <h3>Urgent</h3>
                <div class="value">{{.UrgentCount}}</div>
            </div>
        </div>

        {{if .UrgentAlerts}}
        <div class="section">
            <h2>Urgent Alerts</h2>
            <ul class="alerts">
                {{range .UrgentAlerts}}<li>{{.}}</li>{{end}}
            </ul>
        </div>
        {{end}}

        <div class="section">
            <h2>Recommended Services</h2>
            {{if .Recommendations}}
            <table class="recommendations-table">
                <thead>
                    <tr>
                        <th>Service</th>
                        <th>Priority</th>
                        <th>Reason</th>
                        <th>Due</th>
                        <th>Estimated Cost</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Recommendations}}
                    <tr>
                        <td><strong>{{.RecommendedService}}</strong></td>
                        <td><span class="priority-badge priority-{{.Priority | lower}}">{{.Priority}}</span></td>
                        <td>{{.Reason}}</td>
                        <td>{{.DueDate.Format "02/01/2006"}}</td>
                        <td>{{money .EstimatedCost}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
            {{else}}
            <p>No services are due.</p>
            {{end}}
        </div>

        <div class="footer">
            <p>Generated by <strong>assist-advisor</strong></p>
        </div>
    </div>
</body>
</html>
`

// GenerateHTML creates an HTML report
func GenerateHTML(report *Report, writer io.Writer) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"lower": func(s interface{}) string {
			return strings.ToLower(fmt.Sprintf("%v", s))
		},
		"money": func(d decimal.Decimal) string {
			return "Rs. " + d.StringFixed(2)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(writer, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}
