// Package services implements the business logic layer of the dashboard.
// Handlers and the websocket hub talk to services; services talk to the
// dataset cache, the pure renderer, the chart rasteriser and the exporters.
//
// # Available Services
//
//	- DashboardService: renders view models, charts and district exports, and
//	  reloads the dataset on request
//	- HealthService: liveness, readiness (dataset availability) and version
//
// # Caching
//
// The dataset is cached by dataprocessing.DatasetCache. Chart PNGs are cached
// in memory (go-cache) under "fingerprint|kind|region", so a reload that
// changes the files can never serve an old image.
//
// # Error Handling
//
// Selection problems are VALIDATION AppErrors wrapping ErrUnknownRegion,
// ErrUnknownChart, ErrUnknownFormat or ErrStateRequired. Dataset problems
// keep the CONFIG/SCHEMA AppErrors raised by dataprocessing. Handlers map
// both onto RFC 7807 problems.
//
// # Testing
//
// Collaborators are mocked with testify:
//
//	hub := &MockWebSocketHub{}
//	hub.On("BroadcastDataUpdate", mock.Anything).Return()
//	svc.SetBroadcaster(hub)
package services
