package reporting

import (
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/apisentinel/scanner/internal/scanner"
)

func GenerateHTML(report Report, filename string) error {
	htmlTemplate := `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>API Sentinel Scan Report</title>
	<style>
		* { margin: 0; padding: 0; box-sizing: border-box; }
		body {
			font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
			background: #f5f5f5;
			padding: 20px;
			color: #333;
		}
		.container { max-width: 1200px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
		h1 { font-size: 24px; margin-bottom: 10px; color: #222; }
		.meta { color: #666; font-size: 14px; margin-bottom: 30px; }
		.stats {
			display: grid;
			grid-template-columns: repeat(auto-fit, minmax(140px, 1fr));
			gap: 15px;
			margin-bottom: 30px;
		}
		.stat-card { background: #f9f9f9; padding: 15px; border-radius: 6px; border-left: 3px solid #007bff; }
		.stat-card.critical { border-left-color: #dc3545; }
		.stat-card.high { border-left-color: #fd7e14; }
		.stat-card.medium { border-left-color: #ffc107; }
		.stat-value { font-size: 24px; font-weight: bold; }
		.stat-label { font-size: 12px; color: #666; margin-top: 5px; }
		table { width: 100%%; border-collapse: collapse; font-size: 14px; }
		th { background: #f0f0f0; padding: 12px; text-align: left; font-weight: 600; border-bottom: 2px solid #ddd; }
		td { padding: 10px 12px; border-bottom: 1px solid #eee; }
		tr:hover { background: #f9f9f9; }
		.badge {
			display: inline-block;
			padding: 3px 8px;
			border-radius: 4px;
			font-size: 11px;
			font-weight: 600;
			color: white;
		}
		.badge-critical { background: #dc3545; }
		.badge-high { background: #fd7e14; }
		.badge-medium { background: #ffc107; color: #333; }
		.badge-low { background: #28a745; }
		.badge-info { background: #17a2b8; }
		code { background: #f4f4f4; padding: 2px 6px; border-radius: 3px; font-family: monospace; font-size: 13px; }
	</style>
</head>
<body>
	<div class="container">
		<h1>API Sentinel Scan Report</h1>
		<div class="meta">Run %s &middot; Generated %s</div>

		<div class="stats">
			<div class="stat-card critical">
				<div class="stat-value">%d</div>
				<div class="stat-label">Critical</div>
			</div>
			<div class="stat-card high">
				<div class="stat-value">%d</div>
				<div class="stat-label">High</div>
			</div>
			<div class="stat-card medium">
				<div class="stat-value">%d</div>
				<div class="stat-label">Medium</div>
			</div>
			<div class="stat-card">
				<div class="stat-value">%d</div>
				<div class="stat-label">Targets</div>
			</div>
			<div class="stat-card">
				<div class="stat-value">%d</div>
				<div class="stat-label">Total Findings</div>
			</div>
		</div>

		<table>
			<thead>
				<tr>
					<th>Severity</th>
					<th>Endpoint</th>
					<th>Vulnerability</th>
					<th>Details</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>
	</div>
</body>
</html>`

	var rows strings.Builder
	writeRows := func(severity string, findings []scanner.Finding) {
		for _, f := range findings {
			rows.WriteString(fmt.Sprintf(`
				<tr>
					<td><span class="badge badge-%s">%s</span></td>
					<td><code>%s</code></td>
					<td>%s</td>
					<td>%s</td>
				</tr>`,
				severity, strings.ToUpper(severity),
				html.EscapeString(f.Endpoint),
				html.EscapeString(f.Vulnerability),
				html.EscapeString(f.Details)))
		}
	}

	writeRows("critical", report.Critical)
	writeRows("high", report.High)
	writeRows("medium", report.Medium)
	writeRows("low", report.Low)
	writeRows("info", report.Info)

	finalHTML := fmt.Sprintf(htmlTemplate,
		report.RunID,
		time.Now().Format("2006-01-02 15:04:05"),
		len(report.Critical),
		len(report.High),
		len(report.Medium),
		report.Metadata.TargetCount,
		report.Metadata.TotalFindings,
		rows.String())

	return os.WriteFile(filename, []byte(finalHTML), 0644)
}
