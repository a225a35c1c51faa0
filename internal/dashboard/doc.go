// Package dashboard turns a Table and a user selection into a ViewModel:
// KPI tiles, chart series, the district table, the pincode heat grid and the
// optional summary insights. Render is a pure function; caching and I/O live
// in the services layer.
package dashboard
