package device

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"

	"golang.org/x/sys/unix"

	"yammer/internal/logging"
)

// Kind identifies the compute device a file's inference loop runs on.
type Kind string

const (
	// Accelerated means a GPU or dedicated accelerator was detected.
	Accelerated Kind = "accelerated"
	// CPU is the fallback when no accelerator is available.
	CPU Kind = "cpu"
)

// Releaser frees device-resident scratch state between chunks. The model
// runner satisfies this.
type Releaser interface {
	FreeCache(ctx context.Context) error
}

// ProbeFunc reports whether an accelerated device is present.
type ProbeFunc func() bool

// Monitor tracks the active compute device for a run and performs periodic
// memory housekeeping during inference.
type Monitor struct {
	logger   *slog.Logger
	probe    ProbeFunc
	releaser Releaser
	kind     Kind
	probed   bool
}

// Option adjusts monitor construction.
type Option func(*Monitor)

// WithProbe overrides the accelerator probe.
func WithProbe(probe ProbeFunc) Option {
	return func(m *Monitor) {
		m.probe = probe
	}
}

// WithReleaser installs the scratch releaser invoked after each chunk on an
// accelerated device.
func WithReleaser(r Releaser) Option {
	return func(m *Monitor) {
		m.releaser = r
	}
}

// NewMonitor builds a monitor. Construction does not probe; Select does.
func NewMonitor(logger *slog.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Monitor{
		logger: logger.With(logging.String(logging.FieldComponent, "device")),
		probe:  probeAccelerator,
		kind:   CPU,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AttachReleaser installs the scratch releaser after construction, for
// callers that build the model runner once the device is known.
func (m *Monitor) AttachReleaser(r Releaser) {
	m.releaser = r
}

// Select fixes the compute device for this monitor. The probe runs once;
// every later call returns the same selection, so the device seen by the
// inference loop never diverges from the runner configuration established
// at run start.
func (m *Monitor) Select(ctx context.Context) Kind {
	if err := ctx.Err(); err != nil {
		return m.kind
	}
	if m.probed {
		return m.kind
	}
	if m.probe != nil && m.probe() {
		m.kind = Accelerated
	} else {
		m.kind = CPU
	}
	m.probed = true
	m.logger.InfoContext(ctx, "compute device selected", logging.String("device", string(m.kind)))
	return m.kind
}

// Kind returns the device fixed by the last Select call.
func (m *Monitor) Kind() Kind {
	return m.kind
}

// Accelerated reports whether the active device is an accelerator.
func (m *Monitor) Accelerated() bool {
	return m.kind == Accelerated
}

// Checkpoint logs memory pressure and forces allocator housekeeping. The
// inference loop calls this at the cadence given by CheckpointInterval.
func (m *Monitor) Checkpoint(ctx context.Context) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	attrs := []logging.Attr{
		logging.String("device", string(m.kind)),
		logging.Uint64("heap_alloc_bytes", stats.HeapAlloc),
		logging.Uint64("heap_sys_bytes", stats.HeapSys),
		logging.Uint64("gc_cycles", uint64(stats.NumGC)),
	}
	if total, free, ok := systemMemory(); ok {
		attrs = append(attrs,
			logging.Uint64("system_total_bytes", total),
			logging.Uint64("system_free_bytes", free))
	}
	m.logger.InfoContext(ctx, "memory checkpoint", logging.Args(attrs...)...)

	runtime.GC()
	debug.FreeOSMemory()
}

// ReleaseScratch frees device-resident scratch state after a chunk. It is a
// no-op on CPU or when no releaser is installed.
func (m *Monitor) ReleaseScratch(ctx context.Context) {
	if m.kind != Accelerated || m.releaser == nil {
		return
	}
	if err := m.releaser.FreeCache(ctx); err != nil {
		m.logger.WarnContext(ctx, "scratch release failed", logging.Error(err))
	}
}

// CheckpointInterval returns how many chunks to process between memory
// checkpoints: half the chunk count rounded up, never less than one.
func CheckpointInterval(chunkCount int) int {
	if chunkCount <= 1 {
		return 1
	}
	return (chunkCount + 1) / 2
}

func systemMemory() (total, free uint64, ok bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0, false
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return uint64(info.Totalram) * unit, uint64(info.Freeram) * unit, true
}
