// Package http implements the HTTP handlers of the backup report service.
// Handlers stay thin: they parse and validate the request, call the report
// or health service and render the result.
//
// # Routes
//
// The report handler registers these routes under /api:
//
//	GET    /cell-managers                          configured Cell Managers
//	POST   /workspaces                             create a workspace
//	DELETE /workspaces/{id}                        drop a workspace and its uploads
//	POST   /workspaces/{id}/cell-managers/{cm}     upload session exports ("files")
//	POST   /workspaces/{id}/schedule               upload a schedule workbook ("file", "period")
//	GET    /workspaces/{id}/dashboard?from=&to=    filtered dashboard
//	GET    /workspaces/{id}/export/{table}.csv     one table as CSV
//	GET    /workspaces/{id}/export/{table}.xlsx    one table as a workbook
//	GET    /workspaces/{id}/export/summary.xlsx    every table in one workbook
//
// Dates are YYYY-MM-DD and both bounds are inclusive.
//
// # Error Handling
//
// Service errors are mapped to API errors and rendered as RFC 7807 Problem
// Details by the shared error handler:
//
//	{
//	    "type": "/errors/workspace/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Workspace not found",
//	    "instance": "/api/workspaces/9b2f6c1e-7d0a-4c55-9a8e-3f1f0f3a2b10/dashboard",
//	    "error_code": "WORKSPACE_NOT_FOUND"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// ReportServiceInterface.
package http
