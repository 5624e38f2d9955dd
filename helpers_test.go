package cachesize

import "encoding/binary"

// fakeProvider is a Provider with fixed answers that counts how often each
// strategy's data was read.
type fakeProvider struct {
	unavailable bool
	vendor      string
	signature   uint32
	maxExt      uint32
	caches      []CacheDescriptor
	noCacheLeaf bool
	amd         AMDCacheInfo
	noAMD       bool

	descriptorCalls int
	amdCalls        int
}

func (f *fakeProvider) Available() bool         { return !f.unavailable }
func (f *fakeProvider) VendorID() string        { return f.vendor }
func (f *fakeProvider) Signature() uint32       { return f.signature }
func (f *fakeProvider) MaxExtendedLeaf() uint32 { return f.maxExt }

func (f *fakeProvider) CacheDescriptors() ([]CacheDescriptor, bool) {
	f.descriptorCalls++
	if f.noCacheLeaf {
		return nil, false
	}
	// fresh copy per call, like a real enumeration
	return append([]CacheDescriptor(nil), f.caches...), true
}

func (f *fakeProvider) AMDCacheInfo() (AMDCacheInfo, bool) {
	f.amdCalls++
	return f.amd, !f.noAMD
}

// signature encodes EAX of leaf 1.
func signature(family, extFamily, model, extModel, stepping uint32) uint32 {
	return stepping | model<<4 | family<<8 | extModel<<16 | extFamily<<20
}

var (
	zen2Signature  = signature(0xF, 0x8, 0x1, 0x3, 0x0) // family 17h model 31h
	zen3Signature  = signature(0xF, 0xA, 0x1, 0x2, 0x2) // family 19h model 21h
	zen5Signature  = signature(0xF, 0xB, 0x4, 0x4, 0x0) // family 1Ah model 44h
	intelSignature = signature(0x6, 0x0, 0xF, 0x8, 0x8) // family 6 model 8Fh
)

// descriptor builds a CacheDescriptor with a single partition.
func descriptor(level uint8, t CacheType, sets, ways, line uint32) CacheDescriptor {
	return CacheDescriptor{Level: level, Type: t, Sets: sets, Ways: ways, LineSize: line, Partitions: 1}
}

// cacheLeafRegs encodes a cache parameters subleaf.
func cacheLeafRegs(level uint32, t CacheType, sets, ways, partitions, line uint32) (a, b, c uint32) {
	a = uint32(t) | level<<5 | 1<<8
	b = (line - 1) | (partitions-1)<<12 | (ways-1)<<22
	c = sets - 1
	return a, b, c
}

// vendorRegs splits a vendor string into EBX, ECX and EDX of leaf 0.
func vendorRegs(vendor string) (b, c, d uint32) {
	id := []byte(vendor)
	return binary.LittleEndian.Uint32(id[0:4]), binary.LittleEndian.Uint32(id[8:12]), binary.LittleEndian.Uint32(id[4:8])
}

// intelCapture is a family 6 CPU with a 48KB L1d, 32KB L1i, 2MB L2 and 105MB L3.
func intelCapture() Snapshot {
	var data Snapshot
	b, c, d := vendorRegs(VendorIntel)
	data.Add(leafVendor, 0, 0x1F, b, c, d)
	data.Add(leafSignature, 0, intelSignature, 0, 0, 0)

	subleaves := [][6]uint32{
		{1, uint32(Data), 64, 12, 1, 64},
		{1, uint32(Instruction), 64, 8, 1, 64},
		{2, uint32(Unified), 2048, 16, 1, 64},
		{3, uint32(Unified), 114688, 15, 1, 64},
	}
	for i, s := range subleaves {
		a, b, c := cacheLeafRegs(s[0], CacheType(s[1]), s[2], s[3], s[4], s[5])
		data.Add(leafCacheParams, uint32(i), a, b, c, 0)
	}

	data.Add(leafExtMax, 0, 0x80000008, 0, 0, 0)
	return data
}

// amdCapture is an AMD CPU with the given signature. The fixed leaves report
// 32KB L1i, 48KB L1d, 1MB L2 and 32MB L3; leaf 0x8000001D reports a 32KB
// L1d, 1MB L2 and 16MB L3.
func amdCapture(sig uint32) Snapshot {
	var data Snapshot
	b, c, d := vendorRegs(VendorAMD)
	data.Add(leafVendor, 0, 0x10, b, c, d)
	data.Add(leafSignature, 0, sig, 0, 0, 0)
	data.Add(leafExtMax, 0, 0x80000021, 0, 0, 0)
	data.Add(leafExtFeatures, 0, 0, 0, 1<<22, 0)

	// L1d 48KB, L1i 32KB, both with 64B lines
	data.Add(leafAMDL1Cache, 0, 0, 0, 48<<24|12<<16|1<<8|64, 32<<24|8<<16|1<<8|64)
	// L2 1MB, L3 64 x 512KB
	data.Add(leafAMDL2L3Cache, 0, 0, 0, 1024<<16|0x8<<12|1<<8|64, 64<<18|0x9<<12|64)

	subleaves := [][6]uint32{
		{1, uint32(Data), 64, 8, 1, 64},
		{2, uint32(Unified), 2048, 8, 1, 64},
		{3, uint32(Unified), 16384, 16, 1, 64},
	}
	for i, s := range subleaves {
		a, b, c := cacheLeafRegs(s[0], CacheType(s[1]), s[2], s[3], s[4], s[5])
		data.Add(leafAMDCacheParams, uint32(i), a, b, c, 0)
	}
	return data
}
