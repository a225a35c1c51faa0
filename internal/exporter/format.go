package exporter

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// roundShare rounds a percentage to two decimal places
func roundShare(f float64) float64 {
	return math.Round(f*100) / 100
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// Filename builds a download name such as "districts_tamil_nadu.csv".
func Filename(state, ext string) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(state), "_"), "_")
	if slug == "" {
		slug = "all"
	}
	return fmt.Sprintf("districts_%s.%s", slug, strings.TrimPrefix(ext, "."))
}
