package cachesize

// AMDCacheInfo holds the fixed-layout cache fields of leaves 0x80000005 and
// 0x80000006. Sizes are in kilobytes and line sizes in bytes; a zero size
// means the cache is not reported.
type AMDCacheInfo struct {
	L1ISizeKB   uint32 `json:"l1i_size_kb" yaml:"l1i_size_kb"`
	L1ILineSize uint32 `json:"l1i_line_size" yaml:"l1i_line_size"`
	L1DSizeKB   uint32 `json:"l1d_size_kb" yaml:"l1d_size_kb"`
	L1DLineSize uint32 `json:"l1d_line_size" yaml:"l1d_line_size"`
	L2SizeKB    uint32 `json:"l2_size_kb" yaml:"l2_size_kb"`
	L2LineSize  uint32 `json:"l2_line_size" yaml:"l2_line_size"`
	L3SizeKB    uint32 `json:"l3_size_kb" yaml:"l3_size_kb"`
	L3LineSize  uint32 `json:"l3_line_size" yaml:"l3_line_size"`
}

// decodeAMDL1 decodes ECX (data) and EDX (instruction) of leaf 0x80000005.
func decodeAMDL1(info *AMDCacheInfo, c, d uint32) {
	info.L1DSizeKB = (c >> 24) & 0xFF
	info.L1DLineSize = c & 0xFF
	info.L1ISizeKB = (d >> 24) & 0xFF
	info.L1ILineSize = d & 0xFF
}

// decodeAMDL2L3 decodes ECX (L2) and EDX (L3) of leaf 0x80000006.
// L3 size is reported in 512KB units and is stored here in KB.
func decodeAMDL2L3(info *AMDCacheInfo, c, d uint32) {
	info.L2SizeKB = (c >> 16) & 0xFFFF
	info.L2LineSize = c & 0xFF
	info.L3SizeKB = ((d >> 18) & 0x3FFF) * 512
	info.L3LineSize = d & 0xFF
}

// readAMDCacheInfo reads the fixed cache fields. It reports false when
// leaf 0x80000005 is beyond the maximum extended leaf.
func readAMDCacheInfo(src Source, maxExtFunc uint32) (AMDCacheInfo, bool) {
	var info AMDCacheInfo
	if maxExtFunc < leafAMDL1Cache {
		return info, false
	}

	_, _, c, d := src.CPUID(leafAMDL1Cache, 0)
	decodeAMDL1(&info, c, d)

	if maxExtFunc >= leafAMDL2L3Cache {
		_, _, c, d = src.CPUID(leafAMDL2L3Cache, 0)
		decodeAMDL2L3(&info, c, d)
	}

	return info, true
}

// resolveZen maps (level, type) onto the fixed fields. Sizes are converted
// from KB to bytes; line sizes are already in bytes.
func resolveZen(info AMDCacheInfo, level uint8, t CacheType, m measure) (uint64, Reason) {
	var sizeKB, line uint32
	switch {
	case level == 1 && t == Instruction:
		sizeKB, line = info.L1ISizeKB, info.L1ILineSize
	case level == 1 && t == Data:
		sizeKB, line = info.L1DSizeKB, info.L1DLineSize
	case level == 2 && t == Unified:
		sizeKB, line = info.L2SizeKB, info.L2LineSize
	case level == 3 && t == Unified:
		sizeKB, line = info.L3SizeKB, info.L3LineSize
	default:
		return 0, NoFixedField
	}

	if sizeKB == 0 {
		return 0, NoMatch
	}
	if m == measureLine {
		return uint64(line), OK
	}
	return uint64(sizeKB) * 1024, OK
}
