package cachesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCacheDescriptor(t *testing.T) {
	a, b, c := cacheLeafRegs(2, Unified, 1024, 16, 1, 64)
	a |= 1<<9 | 3<<14 // fully associative, 4 cores sharing

	d := decodeCacheDescriptor(a, b, c)
	assert.Equal(t, uint8(2), d.Level)
	assert.Equal(t, Unified, d.Type)
	assert.Equal(t, uint32(64), d.LineSize)
	assert.Equal(t, uint32(16), d.Ways)
	assert.Equal(t, uint32(1024), d.Sets)
	assert.Equal(t, uint32(1), d.Partitions)
	assert.Equal(t, uint32(4), d.MaxCoresSharing)
	assert.True(t, d.SelfInitializing)
	assert.True(t, d.FullyAssociative)
	assert.Equal(t, uint64(1<<20), d.Size())

	d = decodeCacheDescriptor(7, 0, 0)
	assert.Equal(t, Reserved, d.Type)
}

func TestDecodeAMDFields(t *testing.T) {
	var info AMDCacheInfo
	decodeAMDL1(&info, 48<<24|12<<16|1<<8|64, 32<<24|8<<16|1<<8|64)
	decodeAMDL2L3(&info, 1024<<16|0x8<<12|1<<8|64, 64<<18|0x9<<12|64)

	assert.Equal(t, AMDCacheInfo{
		L1ISizeKB: 32, L1ILineSize: 64,
		L1DSizeKB: 48, L1DLineSize: 64,
		L2SizeKB: 1024, L2LineSize: 64,
		L3SizeKB: 32768, L3LineSize: 64,
	}, info)
}

func TestLeafProviderIntel(t *testing.T) {
	p := NewProvider(intelCapture())
	require.True(t, p.Available())
	assert.Equal(t, VendorIntel, p.VendorID())
	assert.Equal(t, uint32(0x80000008), p.MaxExtendedLeaf())

	caches, ok := p.CacheDescriptors()
	require.True(t, ok)
	require.Len(t, caches, 4)

	r := New(p)
	tests := []struct {
		level uint8
		t     CacheType
		size  int
	}{
		{1, Data, 48 << 10},
		{1, Instruction, 32 << 10},
		{2, Unified, 2 << 20},
		{3, Unified, 105 << 20},
	}
	for _, tt := range tests {
		size, ok := r.Size(tt.level, tt.t)
		require.True(t, ok, "L%d %s", tt.level, tt.t)
		assert.Equal(t, tt.size, size, "L%d %s", tt.level, tt.t)
		line, ok := r.LineSize(tt.level, tt.t)
		require.True(t, ok)
		assert.Equal(t, 64, line)
	}

	_, hybrid := p.Hybrid()
	assert.False(t, hybrid)
}

func TestLeafProviderZenUsesFixedFields(t *testing.T) {
	r := New(NewProvider(amdCapture(zen2Signature)))

	// the fixed leaves report 48KB L1d and 32MB L3, leaf 0x8000001D 32KB and 16MB
	size, ok := r.Size(1, Data)
	require.True(t, ok)
	assert.Equal(t, 48<<10, size)

	size, ok = r.Size(1, Instruction)
	require.True(t, ok)
	assert.Equal(t, 32<<10, size)

	size, ok = r.Size(2, Unified)
	require.True(t, ok)
	assert.Equal(t, 1<<20, size)

	size, ok = r.Size(3, Unified)
	require.True(t, ok)
	assert.Equal(t, 32<<20, size)
}

func TestLeafProviderNewerAMDUsesCacheLeaf(t *testing.T) {
	r := New(NewProvider(amdCapture(zen5Signature)))

	size, ok := r.Size(1, Data)
	require.True(t, ok)
	assert.Equal(t, 32<<10, size)

	size, ok = r.Size(3, Unified)
	require.True(t, ok)
	assert.Equal(t, 16<<20, size)

	// no L1 instruction descriptor in leaf 0x8000001D
	_, reason := r.SizeReason(1, Instruction)
	assert.Equal(t, NoMatch, reason)
}

func TestLeafProviderAMDWithoutTopoExt(t *testing.T) {
	data := amdCapture(zen5Signature)
	data.Add(leafExtFeatures, 0, 0, 0, 0, 0)

	_, ok := NewProvider(data).CacheDescriptors()
	assert.False(t, ok)

	_, reason := New(NewProvider(data)).SizeReason(1, Data)
	assert.Equal(t, NoFacility, reason)
}

func TestLeafProviderWithoutCacheLeaf(t *testing.T) {
	data := intelCapture()
	b, c, d := vendorRegs(VendorIntel)
	data.Add(leafVendor, 0, 0x2, b, c, d)

	_, ok := NewProvider(data).CacheDescriptors()
	assert.False(t, ok)
}

func TestLeafProviderAMDFixedLeavesOutOfRange(t *testing.T) {
	data := amdCapture(zen2Signature)
	data.Add(leafExtMax, 0, 0x80000004, 0, 0, 0)

	_, ok := NewProvider(data).AMDCacheInfo()
	assert.False(t, ok)

	data.Add(leafExtMax, 0, leafAMDL1Cache, 0, 0, 0)
	info, ok := NewProvider(data).AMDCacheInfo()
	require.True(t, ok)
	assert.Equal(t, uint32(48), info.L1DSizeKB)
	assert.Zero(t, info.L2SizeKB)
}

func TestEnumerationIsBounded(t *testing.T) {
	var data Snapshot
	b, c, d := vendorRegs(VendorIntel)
	data.Add(leafVendor, 0, 0x4, b, c, d)
	data.Add(leafSignature, 0, intelSignature, 0, 0, 0)
	for i := uint32(0); i < maxCacheSubleaves+8; i++ {
		a, b, c := cacheLeafRegs(1, Data, 64, 8, 1, 64)
		data.Add(leafCacheParams, i, a, b, c, 0)
	}

	caches, ok := NewProvider(data).CacheDescriptors()
	require.True(t, ok)
	assert.Len(t, caches, maxCacheSubleaves)
}

func TestHybrid(t *testing.T) {
	data := intelCapture()
	data.Add(0x7, 0, 0, 0, 0, 1<<15)
	data.Add(leafHybrid, 0, 0x40<<24|0x1, 0, 0, 0)

	core, ok := NewProvider(data).Hybrid()
	require.True(t, ok)
	assert.Equal(t, uint32(0x40), core.CoreType)
	assert.Equal(t, uint32(0x1), core.NativeModelID)
	assert.Equal(t, "Performance core (P-core)", core.CoreTypeName)

	data.Add(leafHybrid, 0, 0x20<<24, 0, 0, 0)
	core, ok = NewProvider(data).Hybrid()
	require.True(t, ok)
	assert.Equal(t, "Efficient core (E-core)", core.CoreTypeName)

	_, ok = NewProvider(amdCapture(zen3Signature)).Hybrid()
	assert.False(t, ok)
}

func TestVendorIDTrimsPadding(t *testing.T) {
	var data Snapshot
	data.Add(leafVendor, 0, 1, 0x20202020, 0, 0)
	assert.Equal(t, "", NewProvider(data).VendorID())
}

func TestHostProvider(t *testing.T) {
	p := HostProvider()
	require.NotNil(t, p)
	if HostSource() == nil {
		assert.IsType(t, Unsupported{}, p)
		assert.False(t, p.Available())
	}
}
