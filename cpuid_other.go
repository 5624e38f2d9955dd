//go:build !amd64 && !386

package cachesize

// HostSource returns nil: CPUID does not exist outside x86, so every
// query on these hosts resolves to no value.
func HostSource() Source {
	return nil
}
