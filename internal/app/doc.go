// Package app wires the enrolment dashboard server together and owns its lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, ENROLPULSE_* environment)
//  2. Initialize the JSON logger and OpenTelemetry providers
//  3. Create the dataset cache and the dashboard service
//  4. Load the dataset once; failure here aborts startup
//  5. Create the WebSocket hub and the health service
//  6. Build the chi router and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then shuts down the server, the hub and
// the telemetry providers in that order.
package app
