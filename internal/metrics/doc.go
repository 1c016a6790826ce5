// Package metrics records per-step and per-run metrics for livebuild.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing is collected unless metrics.textfile is configured.
// livebuild is a short-lived process with nothing to scrape, so the
// Prometheus recorder writes its registry in the node_exporter textfile
// format at the end of a run:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run the pipeline with rec ...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
