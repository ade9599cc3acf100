// Package app wires configuration, telemetry, services and the HTTP router
// into a runnable server.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, CHART_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Build the render pool, renderer and services
//	4. Set up middleware and routes
//	5. Start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and flushes telemetry. The package never
// calls os.Exit.
package app
