package dashboard

import (
	"enrolpulse/internal/dataprocessing"
)

const bullet = "• "

// Insights returns the fixed five-line summary for a selection. topState is
// the leading state of the whole dataset, not of the selection.
func Insights(h dataprocessing.Headline, topState string) []string {
	child := bullet + "Child enrolment share unavailable for this selection."
	if h.ChildShare.OK {
		child = printer.Sprintf("%sChild enrolments account for %.1f%% of total.", bullet, h.ChildShare.Value)
	}

	leader := bullet + "No state leads in Aadhaar enrolments nationwide."
	if topState != "" {
		leader = bullet + topState + " leads in Aadhaar enrolments nationwide."
	}

	return []string{
		bullet + "Total Aadhaar enrolments recorded: " + FormatCount(h.Total),
		child,
		bullet + "Adult population dominates Aadhaar coverage.",
		leader,
		bullet + "Enrolment activity shows stable infrastructure performance.",
	}
}
