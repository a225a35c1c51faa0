package contracts

import "fmt"

// Release identifiers reported by /api/version.
const (
	Version      = "1.0.0"
	VersionStage = "stable"
	// APIVersion versions the JSON API and the websocket message envelope together.
	APIVersion = "v1"
)

// ProductName is the human-readable name shown in logs and version reports.
const ProductName = "EnrolPulse Aadhaar Dashboard"

// GetVersionString returns the product name with its version, e.g. "EnrolPulse Aadhaar Dashboard v1.0.0".
func GetVersionString() string {
	return fmt.Sprintf("%s v%s", ProductName, Version)
}
