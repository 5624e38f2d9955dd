package cachesize

// feature locates one CPUID feature flag.
type feature struct {
	name     string
	leaf     uint32
	subleaf  uint32
	register int // 0=EAX, 1=EBX, 2=ECX, 3=EDX
	bit      uint
}

var (
	// featureTopoExt gates leaf 0x8000001D on AMD.
	featureTopoExt = feature{name: "topoext", leaf: leafExtFeatures, register: 2, bit: 22}
	// featureHybrid marks Intel CPUs mixing core types.
	featureHybrid = feature{name: "hybrid", leaf: 0x7, register: 3, bit: 15}
)

// hasFeature reports whether f is set. The caller checks that f.leaf is
// within the supported range.
func hasFeature(src Source, f feature) bool {
	a, b, c, d := src.CPUID(f.leaf, f.subleaf)
	var regValue uint32
	switch f.register {
	case 0:
		regValue = a
	case 1:
		regValue = b
	case 2:
		regValue = c
	case 3:
		regValue = d
	}
	return (regValue>>f.bit)&1 == 1
}
