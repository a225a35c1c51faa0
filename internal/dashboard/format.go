package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"enrolpulse/internal/dataprocessing"
)

// NoDataText is shown in place of an undefined value.
const NoDataText = "No data"

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 1234567 → "1,234,567".
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent renders a share with one decimal place and a percent sign.
func FormatPercent(r dataprocessing.Result) string {
	if !r.OK {
		return NoDataText
	}
	return printer.Sprintf("%.1f%%", r.Value)
}

// FormatAverage truncates toward zero and groups thousands.
func FormatAverage(r dataprocessing.Result) string {
	if !r.OK {
		return NoDataText
	}
	return FormatCount(int64(r.Value))
}
