// Package cachesize reports the size and line size of the CPU caches by
// querying the CPUID instruction directly, without operating system APIs.
//
// Only x86 CPUs are supported. On every other architecture all queries
// report no value.
package cachesize

import (
	"log/slog"
	"math"
	"unsafe"

	"golang.org/x/sys/cpu"
)

type measure int

const (
	measureSize measure = iota
	measureLine
)

func (m measure) String() string {
	if m == measureLine {
		return "line size"
	}
	return "size"
}

// Strategy names the way a Resolver reads cache parameters for a CPU.
type Strategy string

const (
	StrategyNone       Strategy = ""
	StrategyCacheLeaf  Strategy = "cache-leaf"
	StrategyFixedField Strategy = "amd-fixed-field"
)

// Resolver answers cache queries against a Provider. It keeps no state
// between calls: every query reads the CPU again.
type Resolver struct {
	p   Provider
	log *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns a Resolver reading from p. A nil p behaves like Unsupported.
func New(p Provider, opts ...Option) *Resolver {
	if p == nil {
		p = Unsupported{}
	}
	r := &Resolver{p: p}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// host is selected once, when the package is initialised.
var host = New(HostProvider())

// Default returns the Resolver for the running machine.
func Default() *Resolver {
	return host
}

func (r *Resolver) logger() *slog.Logger {
	if r.log != nil {
		return r.log
	}
	return slog.Default()
}

// Provider returns the Provider r reads from.
func (r *Resolver) Provider() Provider {
	return r.p
}

// Identity classifies the CPU. It reports false when the host cannot be identified.
func (r *Resolver) Identity() (Identity, bool) {
	return Classify(r.p)
}

// Strategy returns the strategy r uses on this CPU.
func (r *Resolver) Strategy() Strategy {
	id, ok := r.Identity()
	switch {
	case !ok:
		return StrategyNone
	case id.IsZen():
		return StrategyFixedField
	default:
		return StrategyCacheLeaf
	}
}

// Descriptors returns the cache descriptors of the cache parameters leaf.
func (r *Resolver) Descriptors() []CacheDescriptor {
	if _, ok := r.Identity(); !ok {
		return nil
	}
	caches, _ := r.p.CacheDescriptors()
	return caches
}

func (r *Resolver) resolve(level uint8, t CacheType, m measure) (int, Reason) {
	id, ok := r.Identity()
	if !ok {
		r.logger().Debug("cpu identification unavailable", slog.Int("level", int(level)), slog.String("type", t.String()))
		return 0, NoFacility
	}

	var (
		v      uint64
		reason Reason
	)
	if id.IsZen() {
		info, ok := r.p.AMDCacheInfo()
		if !ok {
			return 0, NoFacility
		}
		v, reason = resolveZen(info, level, t, m)
	} else {
		caches, ok := r.p.CacheDescriptors()
		if !ok {
			return 0, NoFacility
		}
		v, reason = resolveGeneric(caches, level, t, m)
	}

	r.logger().Debug("resolved cache parameter",
		slog.String("vendor", id.Vendor),
		slog.Bool("zen", id.IsZen()),
		slog.Int("level", int(level)),
		slog.String("type", t.String()),
		slog.String("measure", m.String()),
		slog.Uint64("value", v),
		slog.String("reason", reason.String()))

	if reason != OK {
		return 0, reason
	}
	if v > math.MaxInt {
		return 0, Unrepresentable
	}
	return int(v), OK
}

// SizeReason returns the total size in bytes of the level cache of type t,
// or the Reason it could not be determined.
func (r *Resolver) SizeReason(level uint8, t CacheType) (int, Reason) {
	return r.resolve(level, t, measureSize)
}

// LineSizeReason returns the line size in bytes of the level cache of type t,
// or the Reason it could not be determined.
func (r *Resolver) LineSizeReason(level uint8, t CacheType) (int, Reason) {
	return r.resolve(level, t, measureLine)
}

// Size returns the total size in bytes of the level cache of type t.
// If several caches match, the smallest is reported.
func (r *Resolver) Size(level uint8, t CacheType) (int, bool) {
	v, reason := r.SizeReason(level, t)
	return v, reason == OK
}

// LineSize returns the line size in bytes of the level cache of type t.
// If several caches match, the smallest is reported.
func (r *Resolver) LineSize(level uint8, t CacheType) (int, bool) {
	v, reason := r.LineSizeReason(level, t)
	return v, reason == OK
}

// CacheSize returns the total size in bytes of the level cache of type t.
//
// It reports false if the CPU cannot be queried, if no such cache exists,
// or if the size does not fit in an int. Use Default().SizeReason to tell
// these apart.
func CacheSize(level uint8, t CacheType) (int, bool) {
	return host.Size(level, t)
}

// CacheLineSize returns the line size in bytes of the level cache of type t.
//
// It reports false under the same conditions as CacheSize.
func CacheLineSize(level uint8, t CacheType) (int, bool) {
	return host.LineSize(level, t)
}

// L1CacheSize returns the total size in bytes of the L1 data cache.
func L1CacheSize() (int, bool) {
	return CacheSize(1, Data)
}

// L1CacheLineSize returns the line size in bytes of the L1 data cache.
func L1CacheLineSize() (int, bool) {
	return CacheLineSize(1, Data)
}

// L2CacheSize returns the total size in bytes of the unified L2 cache.
func L2CacheSize() (int, bool) {
	return CacheSize(2, Unified)
}

// L2CacheLineSize returns the line size in bytes of the unified L2 cache.
func L2CacheLineSize() (int, bool) {
	return CacheLineSize(2, Unified)
}

// L3CacheSize returns the total size in bytes of the unified L3 cache.
func L3CacheSize() (int, bool) {
	return CacheSize(3, Unified)
}

// L3CacheLineSize returns the line size in bytes of the unified L3 cache.
func L3CacheLineSize() (int, bool) {
	return CacheLineSize(3, Unified)
}

// PadSize is the compile-time cache line estimate of golang.org/x/sys/cpu.
// It is zero on platforms where the line size is unknown, such as wasm.
const PadSize = int(unsafe.Sizeof(cpu.CacheLinePad{}))

const defaultLineSize = 64

// LineSizeOrDefault returns the L1 data cache line size reported by r,
// falling back to PadSize and then to 64 bytes.
func (r *Resolver) LineSizeOrDefault() int {
	if v, ok := r.LineSize(1, Data); ok && v > 0 {
		return v
	}
	if PadSize > 0 {
		return PadSize
	}
	return defaultLineSize
}

// CacheLineSizeOrDefault returns the L1 data cache line size of the running
// machine, or an estimate when it cannot be queried.
func CacheLineSizeOrDefault() int {
	return host.LineSizeOrDefault()
}
