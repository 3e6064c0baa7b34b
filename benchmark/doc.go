// Package benchmark holds throughput benchmarks for fanlog and, for
// reference, the same scenarios on zap, slog, logrus and zerolog.
//
//	go test -run '^$' -bench . ./benchmark
package benchmark
