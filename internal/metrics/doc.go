// Package metrics records pipeline run, stage and model-call metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics
// collection never needs nil checks at call sites. When a textfile path is
// configured the CLI swaps in a PrometheusRecorder and writes the registry
// in the node_exporter textfile format once the run finishes:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	p := pipeline.New(pipeline.WithRecorder(rec))
//	...
//	_ = metrics.WriteTextfile(cfg.Metrics.Textfile, reg)
package metrics
