// Package operations runs an export as an ordered list of steps.
//
// A run is described by a RunState that each step reads from and writes to.
// Steps execute one after another; the first failing step stops the run and
// every later step is marked skipped. Each step gets its own span and its
// duration is recorded in the step metric.
//
// The export steps are:
//
//	prepare   create the download and combined folders
//	plan      enumerate the download tasks for today's date
//	download  fetch every task and wait for all of them
//	combine   merge the downloaded files into the dated CSV
//
// Example usage:
//
//	pipeline := operations.NewPipeline(logger, metrics,
//		operations.NewPrepareStep(paths, "eTender_", validator, opts),
//		operations.NewPlanStep(plan, opts),
//		operations.NewDownloadStep(store, fetchOpts, opts),
//		operations.NewCombineStep(combiner, paths, validator, metrics, opts),
//	).WithTracer(providers.Tracer)
//	state := operations.NewRunState(runID, time.Now())
//	err := pipeline.Run(ctx, state)
package operations
