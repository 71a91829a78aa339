// Package diag implements a portable, one-shot runtime diagnostics
// snapshot for the CLI's --debug flag. It is adapted from the
// teacher's debug/goroutines.go ticker-based logger: the same
// runtime/metrics + runtime.MemStats sampling, but taken once at the
// end of a match_image call rather than on an interval, and with the
// Windows-only RSS query (debug/memstats.go) dropped in favor of the
// portable heap/goroutine stats both teacher loggers already sampled.
package diag

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
)

// Snapshot is a point-in-time read of goroutine count and Go heap
// statistics.
type Snapshot struct {
	Goroutines uint64
	StackInUse uint64
	StackSys   uint64
	HeapAlloc  uint64
	HeapSys    uint64
	NumGC      uint32
}

// Sample takes a Snapshot of the current process.
func Sample() Snapshot {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	goroutines := samples[0].Value.Uint64()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return Snapshot{
		Goroutines: goroutines,
		StackInUse: ms.StackInuse,
		StackSys:   ms.StackSys,
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.HeapSys,
		NumGC:      ms.NumGC,
	}
}

// Log emits s as a single structured log line, mirroring the field
// names the teacher's goroutine-stacks log line used.
func (s Snapshot) Log(logger *slog.Logger, msg string) {
	logger.Debug(msg,
		slog.Uint64("goroutines", s.Goroutines),
		slog.Uint64("stack_inuse", s.StackInUse),
		slog.Uint64("stack_sys", s.StackSys),
		slog.Uint64("heap_alloc", s.HeapAlloc),
		slog.Uint64("heap_sys", s.HeapSys),
		slog.Uint64("num_gc", uint64(s.NumGC)),
	)
}
