package cachesize

import "runtime"

// Provider exposes the decoded CPU identification data the resolver needs.
type Provider interface {
	// Available reports whether CPUID can be queried at all.
	Available() bool
	VendorID() string
	// Signature returns EAX of leaf 1.
	Signature() uint32
	MaxExtendedLeaf() uint32
	// CacheDescriptors enumerates the cache parameters leaf. It reports
	// false when the CPU has no such leaf.
	CacheDescriptors() ([]CacheDescriptor, bool)
	AMDCacheInfo() (AMDCacheInfo, bool)
}

// HybridCore describes the core type reported by leaf 0x1A on Intel hybrid parts.
type HybridCore struct {
	NativeModelID uint32 `json:"native_model_id" yaml:"native_model_id"`
	CoreType      uint32 `json:"core_type" yaml:"core_type"`
	CoreTypeName  string `json:"core_type_name" yaml:"core_type_name"`
}

// LeafProvider decodes a raw CPUID Source. Every call re-issues CPUID.
type LeafProvider struct {
	src Source
}

// NewProvider returns a Provider reading from src.
func NewProvider(src Source) *LeafProvider {
	return &LeafProvider{src: src}
}

// HostProvider returns the Provider for the running machine, or Unsupported
// when the host has no usable CPUID.
func HostProvider() Provider {
	src := HostSource()
	if src == nil {
		return Unsupported{Arch: runtime.GOARCH}
	}
	p := NewProvider(src)
	if !p.Available() {
		return Unsupported{Arch: runtime.GOARCH}
	}
	return p
}

// Available reports whether leaf 0 advertises at least the signature leaf.
func (p *LeafProvider) Available() bool {
	if p == nil || p.src == nil {
		return false
	}
	maxFunc, _ := maxLeaves(p.src)
	return maxFunc >= leafSignature
}

// VendorID returns the vendor string, e.g. "GenuineIntel".
func (p *LeafProvider) VendorID() string {
	return vendorID(p.src)
}

// Signature returns EAX of leaf 1.
func (p *LeafProvider) Signature() uint32 {
	a, _, _, _ := p.src.CPUID(leafSignature, 0)
	return a
}

// MaxExtendedLeaf returns the highest extended leaf, or zero.
func (p *LeafProvider) MaxExtendedLeaf() uint32 {
	_, maxExtFunc := maxLeaves(p.src)
	return maxExtFunc
}

// CacheDescriptors enumerates leaf 0x8000001D on AMD and Hygon parts with
// topology extensions, and leaf 4 on everything else.
func (p *LeafProvider) CacheDescriptors() ([]CacheDescriptor, bool) {
	maxFunc, maxExtFunc := maxLeaves(p.src)

	switch p.VendorID() {
	case VendorAMD, VendorHygon:
		if maxExtFunc < leafAMDCacheParams {
			return nil, false
		}
		if !hasFeature(p.src, featureTopoExt) {
			return nil, false
		}
		return enumerateCaches(p.src, leafAMDCacheParams), true
	}

	if maxFunc < leafCacheParams {
		return nil, false
	}
	return enumerateCaches(p.src, leafCacheParams), true
}

// AMDCacheInfo returns the fixed AMD cache fields.
func (p *LeafProvider) AMDCacheInfo() (AMDCacheInfo, bool) {
	return readAMDCacheInfo(p.src, p.MaxExtendedLeaf())
}

// Hybrid returns the core type of the core that executed the query on
// Intel hybrid CPUs. It reports false on every other CPU.
func (p *LeafProvider) Hybrid() (HybridCore, bool) {
	maxFunc, _ := maxLeaves(p.src)
	if maxFunc < leafHybrid || p.VendorID() != VendorIntel {
		return HybridCore{}, false
	}
	if !hasFeature(p.src, featureHybrid) {
		// Not hybrid
		return HybridCore{}, false
	}

	a, _, _, _ := p.src.CPUID(leafHybrid, 0)

	core := HybridCore{
		NativeModelID: a & 0xFFFFFF,
		CoreType:      (a >> 24) & 0xFF,
	}
	switch core.CoreType {
	case 0x20:
		core.CoreTypeName = "Efficient core (E-core)"
	case 0x40:
		core.CoreTypeName = "Performance core (P-core)"
	default:
		core.CoreTypeName = "Unknown core type"
	}
	return core, true
}

// Unsupported is the Provider of hosts without CPUID. Every query on it
// resolves to no value.
type Unsupported struct {
	Arch string
}

func (Unsupported) Available() bool                             { return false }
func (Unsupported) VendorID() string                            { return "" }
func (Unsupported) Signature() uint32                           { return 0 }
func (Unsupported) MaxExtendedLeaf() uint32                     { return 0 }
func (Unsupported) CacheDescriptors() ([]CacheDescriptor, bool) { return nil, false }
func (Unsupported) AMDCacheInfo() (AMDCacheInfo, bool)          { return AMDCacheInfo{}, false }
