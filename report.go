package cachesize

// CacheReport is the resolved size and line size of one cache.
type CacheReport struct {
	Name     string    `json:"name" yaml:"name"`
	Level    uint8     `json:"level" yaml:"level"`
	Type     CacheType `json:"type" yaml:"type"`
	Size     int       `json:"size,omitempty" yaml:"size,omitempty"`
	LineSize int       `json:"line_size,omitempty" yaml:"line_size,omitempty"`
	Reason   Reason    `json:"reason" yaml:"reason"`
}

// Known reports whether both size and line size were resolved.
func (c CacheReport) Known() bool {
	return c.Reason == OK
}

// Report is a snapshot of everything a Resolver can tell about the CPU caches.
type Report struct {
	Available         bool              `json:"available" yaml:"available"`
	Vendor            string            `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Family            uint32            `json:"family,omitempty" yaml:"family,omitempty"`
	Model             uint32            `json:"model,omitempty" yaml:"model,omitempty"`
	Stepping          uint32            `json:"stepping,omitempty" yaml:"stepping,omitempty"`
	Microarchitecture string            `json:"microarchitecture,omitempty" yaml:"microarchitecture,omitempty"`
	Hybrid            *HybridCore       `json:"hybrid,omitempty" yaml:"hybrid,omitempty"`
	Strategy          Strategy          `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Caches            []CacheReport     `json:"caches" yaml:"caches"`
	Descriptors       []CacheDescriptor `json:"descriptors,omitempty" yaml:"descriptors,omitempty"`
	AMD               *AMDCacheInfo     `json:"amd,omitempty" yaml:"amd,omitempty"`
}

// reportedCaches are the caches a Report always lists.
var reportedCaches = []struct {
	name  string
	level uint8
	t     CacheType
}{
	{"L1i", 1, Instruction},
	{"L1d", 1, Data},
	{"L2", 2, Unified},
	{"L3", 3, Unified},
}

// hybridProvider is implemented by providers that can report Intel hybrid core types.
type hybridProvider interface {
	Hybrid() (HybridCore, bool)
}

// Report queries every reported cache and collects the identification data
// that decided how they were read.
func (r *Resolver) Report() Report {
	rep := Report{Caches: []CacheReport{}}

	id, ok := r.Identity()
	if ok {
		rep.Available = true
		rep.Vendor = id.Vendor
		rep.Family = id.EffectiveFamily()
		rep.Model = id.EffectiveModel()
		rep.Stepping = id.Stepping
		rep.Microarchitecture = id.Microarchitecture()
		rep.Strategy = r.Strategy()

		if hp, ok := r.p.(hybridProvider); ok {
			if core, ok := hp.Hybrid(); ok {
				rep.Hybrid = &core
			}
		}
		rep.Descriptors = r.Descriptors()
		if info, ok := r.p.AMDCacheInfo(); ok && id.IsZen() {
			rep.AMD = &info
		}
	}

	for _, c := range reportedCaches {
		cr := CacheReport{Name: c.name, Level: c.level, Type: c.t}
		cr.Size, cr.Reason = r.SizeReason(c.level, c.t)
		if cr.Reason == OK {
			cr.LineSize, cr.Reason = r.LineSizeReason(c.level, c.t)
			if cr.Reason != OK {
				cr.Size = 0
			}
		}
		rep.Caches = append(rep.Caches, cr)
	}

	return rep
}
