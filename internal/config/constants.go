package config

import "time"

// Application constants
const (
	AppName    = "EnrolPulse"
	AppVersion = "1.0.0"

	// Dataset cache modes
	CacheModeModTime = "modtime" // reload when the folder fingerprint changes
	CacheModeProcess = "process" // load once for the life of the process

	// Ranking sizes
	DefaultStateTopN    = 10
	DefaultDistrictTopN = 10
	DefaultPincodeTopN  = 50
	DefaultHeatColumns  = 10

	// Chart rendering, in points
	DefaultChartWidth  = 640
	DefaultChartHeight = 240
	ChartCacheDuration = 10 * time.Minute

	// Page text
	DefaultTitle    = "UIDAI Aadhaar Dashboard"
	DefaultSubtitle = "National Enrolment Analytics – 2025"
	DefaultFooter   = "UIDAI Aadhaar Enrolment Dashboard • 2025"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	DefaultRequestTimeout = 60 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second

	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// File Paths (relative to the working directory or the executable)
	DefaultDataDir  = "data"
	DefaultLogsDir  = "logs"
	DefaultLogFile  = "logs/app.log"
	DefaultLogLevel = "info"

	// Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
