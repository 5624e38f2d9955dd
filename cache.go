package cachesize

import (
	"fmt"
	"strings"
)

// CacheType mirrors the cache type encoding of CPUID leaves 4 and 0x8000001D.
type CacheType uint8

const (
	Null CacheType = iota
	Data
	Instruction
	Unified
	Reserved
)

func (t CacheType) String() string {
	switch t {
	case Null:
		return "Null"
	case Data:
		return "Data"
	case Instruction:
		return "Instruction"
	case Unified:
		return "Unified"
	default:
		return "Reserved"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t CacheType) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(t.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CacheType) UnmarshalText(text []byte) error {
	parsed, err := ParseCacheType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseCacheType parses a cache type name. Only the queryable types are accepted.
func ParseCacheType(s string) (CacheType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "data":
		return Data, nil
	case "i", "instruction":
		return Instruction, nil
	case "u", "unified":
		return Unified, nil
	}
	return Null, fmt.Errorf("unknown cache type %q", s)
}

func cacheTypeFromLeaf(v uint32) CacheType {
	if v > uint32(Unified) {
		return Reserved
	}
	return CacheType(v)
}

// CacheDescriptor is one cache reported by a deterministic cache parameters leaf.
type CacheDescriptor struct {
	Level            uint8     `json:"level" yaml:"level"`
	Type             CacheType `json:"type" yaml:"type"`
	LineSize         uint32    `json:"line_size" yaml:"line_size"`
	Partitions       uint32    `json:"partitions" yaml:"partitions"`
	Ways             uint32    `json:"ways" yaml:"ways"`
	Sets             uint32    `json:"sets" yaml:"sets"`
	MaxCoresSharing  uint32    `json:"max_cores_sharing" yaml:"max_cores_sharing"`
	SelfInitializing bool      `json:"self_initializing" yaml:"self_initializing"`
	FullyAssociative bool      `json:"fully_associative" yaml:"fully_associative"`
}

// Size returns the total size of the cache in bytes, sets * ways * line size.
// Partitions are reported but not multiplied in.
func (c CacheDescriptor) Size() uint64 {
	return uint64(c.Sets) * uint64(c.Ways) * uint64(c.LineSize)
}

// decodeCacheDescriptor decodes EAX, EBX and ECX of leaf 4 or 0x8000001D.
// Every count field is reported minus one.
func decodeCacheDescriptor(a, b, c uint32) CacheDescriptor {
	return CacheDescriptor{
		Level:            uint8((a >> 5) & 0x7),
		Type:             cacheTypeFromLeaf(a & 0x1F),
		LineSize:         (b & 0xFFF) + 1,
		Partitions:       ((b >> 12) & 0x3FF) + 1,
		Ways:             ((b >> 22) & 0x3FF) + 1,
		Sets:             c + 1,
		MaxCoresSharing:  ((a >> 14) & 0xFFF) + 1,
		SelfInitializing: (a>>8)&1 != 0,
		FullyAssociative: (a>>9)&1 != 0,
	}
}

// enumerateCaches walks the subleaves of leaf until the first null cache type.
func enumerateCaches(src Source, leaf uint32) []CacheDescriptor {
	caches := []CacheDescriptor{}
	for i := uint32(0); i < maxCacheSubleaves; i++ {
		a, b, c, _ := src.CPUID(leaf, i)
		if a&0x1F == 0 {
			break
		}
		caches = append(caches, decodeCacheDescriptor(a, b, c))
	}
	return caches
}

// resolveGeneric picks the smallest matching descriptor. A cache split into
// several descriptors at the same level and type is reported by its smallest
// part, so callers never size a working set beyond what every part holds.
func resolveGeneric(caches []CacheDescriptor, level uint8, t CacheType, m measure) (uint64, Reason) {
	var (
		best  uint64
		found bool
	)
	for _, c := range caches {
		if c.Level != level || c.Type != t {
			continue
		}
		v := uint64(c.LineSize)
		if m == measureSize {
			v = c.Size()
		}
		if !found || v < best {
			best, found = v, true
		}
	}
	if !found {
		return 0, NoMatch
	}
	return best, OK
}
