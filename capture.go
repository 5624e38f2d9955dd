package cachesize

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Entry represents one cpuid call result.
type Entry struct {
	Leaf    uint32 `json:"leaf"`
	Subleaf uint32 `json:"subleaf"`
	EAX     uint32 `json:"eax"`
	EBX     uint32 `json:"ebx"`
	ECX     uint32 `json:"ecx"`
	EDX     uint32 `json:"edx"`
}

// Snapshot holds a capture of CPUID results. It is a Source: leaves that were
// not captured read as zero, as unimplemented leaves do on most CPUs.
type Snapshot struct {
	Entries []Entry `json:"entries"`
}

// CPUID returns the captured registers of leaf and subleaf.
func (d Snapshot) CPUID(leaf, subleaf uint32) (a, b, c, dx uint32) {
	for _, e := range d.Entries {
		if e.Leaf == leaf && e.Subleaf == subleaf {
			return e.EAX, e.EBX, e.ECX, e.EDX
		}
	}
	return 0, 0, 0, 0
}

// Add records the registers of one CPUID call, replacing an earlier entry
// for the same leaf and subleaf.
func (d *Snapshot) Add(leaf, subleaf, a, b, c, dx uint32) {
	e := Entry{Leaf: leaf, Subleaf: subleaf, EAX: a, EBX: b, ECX: c, EDX: dx}
	for i := range d.Entries {
		if d.Entries[i].Leaf == leaf && d.Entries[i].Subleaf == subleaf {
			d.Entries[i] = e
			return
		}
	}
	d.Entries = append(d.Entries, e)
}

// Upper bounds of a capture, well past any leaf current CPUs implement.
const (
	maxCaptureStandard = 0xFF
	maxCaptureExtended = 0x800000FF

	leafExtTopology = 0xB
	leafXSave       = 0xD
)

// subleafEnd reports whether subleaf iteration of leaf stops at these registers.
func subleafEnd(leaf, subleaf, a, b, c, d uint32) bool {
	if subleaf == 0 {
		return false
	}
	switch leaf {
	case leafCacheParams, leafAMDCacheParams:
		// stop at the first null cache type
		return a&0x1F == 0
	case leafExtTopology:
		// extended topology ends with a zero EAX
		return a == 0
	case leafXSave:
		// state components are sparse, so every subleaf up to the cap is read
		return false
	}
	return true
}

// subleafEmpty reports whether a subleaf carries nothing worth recording.
func subleafEmpty(leaf, subleaf, a, b, c, d uint32) bool {
	return leaf == leafXSave && subleaf > 0 && a|b|c|d == 0
}

// captureLeaf records leaf and, for leaves with subleaves, every subleaf.
func captureLeaf(data *Snapshot, src Source, leaf uint32) {
	for subleaf := uint32(0); subleaf < maxCacheSubleaves; subleaf++ {
		a, b, c, d := src.CPUID(leaf, subleaf)
		if subleafEnd(leaf, subleaf, a, b, c, d) {
			return
		}
		if subleafEmpty(leaf, subleaf, a, b, c, d) {
			continue
		}
		data.Add(leaf, subleaf, a, b, c, d)
	}
}

// Capture traverses the standard and extended CPUID leaves of src.
func Capture(src Source) Snapshot {
	var data Snapshot
	if src == nil {
		return data
	}

	maxStandard, maxExtended := maxLeaves(src)
	maxStandard = min(maxStandard, maxCaptureStandard)
	maxExtended = min(maxExtended, maxCaptureExtended)
	for leaf := uint32(0); leaf <= maxStandard; leaf++ {
		captureLeaf(&data, src, leaf)
	}

	// The extended max leaf is recorded even when the range is missing.
	if maxExtended == 0 {
		captureLeaf(&data, src, leafExtMax)
		return data
	}
	for leaf := uint32(leafExtMax); leaf <= maxExtended; leaf++ {
		captureLeaf(&data, src, leaf)
	}

	return data
}

// WriteFile writes the capture to filename as indented JSON.
func (d Snapshot) WriteFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "creating capture file")
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return errors.Wrapf(err, "writing capture to %s", filename)
	}

	return nil
}

// SnapshotFromFile reads a capture written by WriteFile.
func SnapshotFromFile(filename string) (Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "opening capture file")
	}
	defer file.Close()

	var data Snapshot
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return Snapshot{}, errors.Wrapf(err, "decoding capture %s", filename)
	}

	return data, nil
}
