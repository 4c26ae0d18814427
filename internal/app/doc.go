// Package app wires configuration, logging, telemetry and the export
// pipeline together for the command line.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, the YAML file and ETENDER_* variables
//  2. Resolve paths and initialize the JSON logger
//  3. Initialize tracing and the metrics registry
//  4. Package the agency and period tables into an immutable plan
//
// # Usage
//
//	application, err := app.NewApplication(app.Options{})
//	if err != nil {
//	    return err
//	}
//	defer application.Shutdown(context.Background())
//	state, err := application.Export(ctx)
//	app.PrintSummary(os.Stdout, state)
//
// # Error Handling
//
// Initialization and pipeline errors are returned to the caller. The app
// never calls os.Exit, leaving the exit code to main.
package app
