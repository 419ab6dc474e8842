package renderer

import "github.com/etnz/papertrade"

// Gains renders a gains report.
func Gains(accountID string, report papertrade.GainsReport) string {
	view := struct {
		AccountID string
		Report    papertrade.GainsReport
	}{accountID, report}
	return renderTemplate("gains", "gains.md", accountPartials(), view)
}
