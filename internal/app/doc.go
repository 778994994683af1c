// Package app provides application initialization and lifecycle management
// for the backup report server. It wires configuration, telemetry, the
// report services and the HTTP router together and owns graceful shutdown.
//
// # Initialization Flow
//
//  1. Resolve and create the data, reports and logs directories
//  2. Initialize OpenTelemetry tracing and Prometheus metrics
//  3. Create the upload store and the report and health services
//  4. Start the system metrics collector
//  5. Build the chi router with middleware and API routes
//  6. Configure and start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Stop
// drains in-flight requests within the configured shutdown timeout, stops
// the metrics collector and flushes telemetry.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
