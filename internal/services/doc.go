// Package services implements the business logic layer of bkpreport.
// It sits between the HTTP handlers and CLI commands on one side and the
// parsing engine in internal/dataprocessing on the other.
//
// # Available Services
//
//   - ReportService: workspaces, uploads, dashboard queries and exports
//   - HealthService: liveness, readiness and version information
//
// # Workspaces
//
// A workspace is an in-memory set of Cell Manager reports and at most one
// schedule report, addressed by a UUID. Uploads are stored on disk through
// files.Manager, parsed, and the parsed reports replace whatever the
// workspace held for that Cell Manager or schedule. Dashboard queries apply
// the date range filter to the stored reports without reading files again.
//
// # Error Handling
//
// Services return the sentinel errors in errors.go, wrapped with context,
// or *apierrors.AppError for parse and storage failures. Upload name checks
// return *apierrors.APIError directly. Handlers use errors.Is and errors.As
// to map them to HTTP responses.
package services
