package cachesize

// Vendor strings reported by leaf 0.
const (
	VendorIntel = "GenuineIntel"
	VendorAMD   = "AuthenticAMD"
	VendorHygon = "HygonGenuine"
)

// Base and extended family bounds of the Zen generations (families 17h to 19h).
const (
	zenBaseFamily   = 0xF
	zenExtFamilyMin = 0x8
	zenExtFamilyMax = 0xA
)

// Identity is the vendor and processor signature of the running CPU.
type Identity struct {
	Vendor    string `json:"vendor" yaml:"vendor"`
	Family    uint32 `json:"family" yaml:"family"`
	ExtFamily uint32 `json:"ext_family" yaml:"ext_family"`
	Model     uint32 `json:"model" yaml:"model"`
	ExtModel  uint32 `json:"ext_model" yaml:"ext_model"`
	Stepping  uint32 `json:"stepping" yaml:"stepping"`
}

// Classify identifies the CPU behind p. It reports false when no vendor
// string is available.
func Classify(p Provider) (Identity, bool) {
	if p == nil || !p.Available() {
		return Identity{}, false
	}
	vendor := p.VendorID()
	if vendor == "" {
		return Identity{}, false
	}
	id := decodeSignature(p.Signature())
	id.Vendor = vendor
	return id, true
}

// decodeSignature splits EAX of leaf 1 into its family, model and stepping fields.
func decodeSignature(a uint32) Identity {
	return Identity{
		Stepping:  a & 0xF,
		Model:     (a >> 4) & 0xF,
		Family:    (a >> 8) & 0xF,
		ExtModel:  (a >> 16) & 0xF,
		ExtFamily: (a >> 20) & 0xFF,
	}
}

// EffectiveFamily returns the display family.
func (id Identity) EffectiveFamily() uint32 {
	if id.Family == 0xF {
		return id.Family + id.ExtFamily
	}
	return id.Family
}

// EffectiveModel returns the display model.
func (id Identity) EffectiveModel() uint32 {
	if id.Family == 0xF || id.Family == 0x6 {
		return id.Model + id.ExtModel<<4
	}
	return id.Model
}

// IsZen reports whether the CPU is an AMD Zen part whose caches are read
// from the fixed AMD leaves instead of the cache parameters leaf.
func (id Identity) IsZen() bool {
	return id.Vendor == VendorAMD &&
		id.Family == zenBaseFamily &&
		id.ExtFamily >= zenExtFamilyMin &&
		id.ExtFamily <= zenExtFamilyMax
}

// Microarchitecture names the AMD generation, or returns "" when unknown.
func (id Identity) Microarchitecture() string {
	switch id.Vendor {
	case VendorAMD:
		switch id.EffectiveFamily() {
		case 0x17:
			return "Zen/Zen+/Zen 2"
		case 0x19:
			return "Zen 3/Zen 4"
		case 0x1A:
			return "Zen 5"
		}
	case VendorHygon:
		if id.EffectiveFamily() == 0x18 {
			return "Dhyana"
		}
	}
	return ""
}
