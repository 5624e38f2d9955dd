//go:build amd64 || 386

package cachesize

// cpuid is implemented in assembly and executes the CPUID instruction
// with EAX=eax and ECX=ecx.
func cpuid(eax, ecx uint32) (a, b, c, d uint32)

type hostSource struct{}

func (hostSource) CPUID(leaf, subleaf uint32) (a, b, c, d uint32) {
	return cpuid(leaf, subleaf)
}

// HostSource returns a Source that executes CPUID on the running CPU.
func HostSource() Source {
	return hostSource{}
}
