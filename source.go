package cachesize

import "strings"

// Source answers raw CPUID queries. The native implementation executes the
// instruction; Snapshot replays a capture.
type Source interface {
	CPUID(leaf, subleaf uint32) (a, b, c, d uint32)
}

const (
	leafVendor         = 0x0
	leafSignature      = 0x1
	leafCacheParams    = 0x4
	leafHybrid         = 0x1A
	leafExtMax         = 0x80000000
	leafExtFeatures    = 0x80000001
	leafAMDL1Cache     = 0x80000005
	leafAMDL2L3Cache   = 0x80000006
	leafAMDCacheParams = 0x8000001D

	// maxCacheSubleaves bounds descriptor enumeration in case a hypervisor
	// never reports a null cache type.
	maxCacheSubleaves = 32
)

// maxLeaves returns the maximum standard and extended leaves src supports.
// The extended value is zero when the extended range is not implemented.
func maxLeaves(src Source) (uint32, uint32) {
	a, _, _, _ := src.CPUID(leafVendor, 0)
	maxFunc := a

	a, _, _, _ = src.CPUID(leafExtMax, 0)
	maxExtFunc := a
	if maxExtFunc < leafExtMax {
		maxExtFunc = 0
	}

	return maxFunc, maxExtFunc
}

// vendorID assembles the 12 byte vendor string from leaf 0 in EBX, EDX, ECX order.
func vendorID(src Source) string {
	_, b, c, d := src.CPUID(leafVendor, 0)
	var id [12]byte
	copy(id[0:], regBytes(b))
	copy(id[4:], regBytes(d))
	copy(id[8:], regBytes(c))
	return strings.TrimSpace(strings.Trim(string(id[:]), "\x00"))
}

func regBytes(r uint32) []byte {
	return []byte{byte(r), byte(r >> 8), byte(r >> 16), byte(r >> 24)}
}
