// Package http implements the HTTP surface of the enrolment dashboard. It is a
// thin layer between chi and the services: handlers parse and validate the
// request, call a service and format the response.
//
// # Routes
//
//	GET  /                               HTML dashboard (?state=, ?insights=1)
//	GET  /charts/{kind}.png              trend, states, districts or pincodes
//	GET  /api/dashboard                  view model as JSON
//	GET  /api/regions                    selector options
//	GET  /api/dataset                    dataset fingerprint and cache stats
//	POST /api/dataset/reload             reload and notify live sessions
//	GET  /api/export/districts.{format}  csv or xlsx, state required
//	GET  /api/health[/ready|/live]       health probes
//	GET  /api/version                    build information
//	GET  /api/sessions                   live session counters
//	GET  /metrics                        Prometheus exposition
//	GET  /ws                             live dashboard session
//
// # Errors
//
// Every JSON failure is an RFC 7807 problem produced by the errors package.
// The HTML page renders the same problem as a visible panel instead.
package http
