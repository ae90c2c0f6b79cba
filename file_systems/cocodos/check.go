package cocodos

import (
	stderrors "errors"

	"github.com/boljen/go-bitmap"
)

// FindingKind classifies a problem found by [Image.Check].
type FindingKind int

const (
	// FindingInvalidGranule means a chain referenced a granule index outside
	// the granule index space.
	FindingInvalidGranule FindingKind = iota
	// FindingDoubleAllocation means a granule is in the chains of two files.
	FindingDoubleAllocation
	// FindingInvalidEntry means a chain reached a granule whose map entry is
	// neither a link nor a terminal.
	FindingInvalidEntry
	// FindingFreeInChain means a chain reached a granule marked free.
	FindingFreeInChain
	// FindingCycle means a chain revisits one of its own granules.
	FindingCycle
)

func (k FindingKind) String() string {
	switch k {
	case FindingInvalidGranule:
		return "invalid granule"
	case FindingDoubleAllocation:
		return "double allocation"
	case FindingInvalidEntry:
		return "invalid granule map entry"
	case FindingFreeInChain:
		return "free granule in chain"
	case FindingCycle:
		return "granule list cycle"
	default:
		return "unknown"
	}
}

// Finding is one problem found in a file's chain.
type Finding struct {
	Kind FindingKind
	// Slot is the directory slot of the file whose chain has the problem.
	Slot    int
	Step    int
	Granule Granule
	Entry   MapEntry
	// Owner is the slot of the file that claimed the granule first. It's only
	// meaningful for FindingDoubleAllocation.
	Owner int
}

// ChainStep is one granule of a file's chain as seen by the checker.
type ChainStep struct {
	Step    int
	Granule Granule
	Entry   MapEntry
}

// SlotReport is what the checker found in one directory slot.
type SlotReport struct {
	Entry DirectoryEntry
	// Size is the file size as a directory listing would show it; SizeErr is
	// the error that truncated it, if any. Both are zero for non-file slots.
	Size    uint
	SizeErr error
	// Steps are the granules of the chain that were walked, in order.
	Steps    []ChainStep
	Findings []Finding
}

// IsFile reports whether the slot holds one of the four file types. All other
// slots are skipped by the checker.
func (r *SlotReport) IsFile() bool {
	return r.Entry.Type.IsFile()
}

// Report is the result of a full consistency check.
type Report struct {
	// Slots holds one report for every directory slot, in slot order.
	Slots []SlotReport
	// Orphans are granules that are in use according to the granule map but
	// that no file's chain reaches.
	Orphans []Granule
	// ComputedFree is the number of granules not reached by any chain.
	ComputedFree uint
	// StoredFree is the image's maintained free granule count.
	StoredFree uint
}

// FileCount returns the number of slots that hold files.
func (r *Report) FileCount() int {
	count := 0
	for i := range r.Slots {
		if r.Slots[i].IsFile() {
			count++
		}
	}
	return count
}

// Findings returns every finding for every file, in slot order.
func (r *Report) Findings() []Finding {
	var findings []Finding
	for i := range r.Slots {
		findings = append(findings, r.Slots[i].Findings...)
	}
	return findings
}

// FreeCountMismatch reports whether the recomputed free granule count differs
// from the stored one. This is a warning, not an error.
func (r *Report) FreeCountMismatch() bool {
	return r.ComputedFree != r.StoredFree
}

// Clean reports whether the check found nothing wrong at all.
func (r *Report) Clean() bool {
	return len(r.Findings()) == 0 && len(r.Orphans) == 0 && !r.FreeCountMismatch()
}

// errStopWalk ends a checker walk after a problem that's already been recorded.
var errStopWalk = stderrors.New("stop walk")

// Check walks the chain of every file in the directory and cross-checks the
// granules they use against the granule map. It never modifies the image.
//
// A problem in one file's chain ends the walk for that file only. Granules
// reached by more than one file are reported but don't stop the walk.
func (image *Image) Check() Report {
	report := Report{
		Slots:      make([]SlotReport, 0, TotalDirectoryEntries),
		StoredFree: image.freeGranules,
	}

	assigned := bitmap.New(TotalGranules)
	var owners [TotalGranules]int
	computedFree := uint(TotalGranules)

	for _, entry := range image.DirectoryEntries() {
		slotReport := SlotReport{Entry: entry}
		if !entry.Type.IsFile() {
			report.Slots = append(report.Slots, slotReport)
			continue
		}

		slotReport.Size, slotReport.SizeErr = image.FileSize(&entry)
		slot := entry.Slot
		finding := func(kind FindingKind, step int, g Granule, e MapEntry) Finding {
			return Finding{Kind: kind, Slot: slot, Step: step, Granule: g, Entry: e, Owner: -1}
		}

		err := image.WalkChain(
			entry.FirstGranule,
			func(step int, g Granule, e MapEntry) error {
				if assigned.Get(int(g)) {
					if owners[g] == slot {
						slotReport.Findings = append(
							slotReport.Findings, finding(FindingCycle, step, g, e))
						return errStopWalk
					}
					f := finding(FindingDoubleAllocation, step, g, e)
					f.Owner = owners[g]
					slotReport.Findings = append(slotReport.Findings, f)
				} else {
					assigned.Set(int(g), true)
					owners[g] = slot
					computedFree--
				}
				slotReport.Steps = append(slotReport.Steps, ChainStep{Step: step, Granule: g, Entry: e})
				return nil
			},
		)

		var chainErr *ChainError
		switch {
		case err == nil, err == errStopWalk:
		case stderrors.Is(err, ErrChainCycle):
			slotReport.Findings = append(
				slotReport.Findings,
				finding(FindingCycle, maxChainSteps, 0, FreeEntry))
		case stderrors.As(err, &chainErr):
			kind := FindingInvalidEntry
			if !chainErr.Granule.IsValid() {
				kind = FindingInvalidGranule
			} else if chainErr.Entry.Kind() == EntryFree {
				kind = FindingFreeInChain
			}
			// A free granule is still reached by the chain, so it counts as
			// assigned for the purposes of the free count. It can also already
			// belong to another file.
			g := chainErr.Granule
			if g.IsValid() {
				if !assigned.Get(int(g)) {
					assigned.Set(int(g), true)
					owners[g] = slot
					computedFree--
				} else if owners[g] != slot {
					f := finding(FindingDoubleAllocation, chainErr.Step, g, chainErr.Entry)
					f.Owner = owners[g]
					slotReport.Findings = append(slotReport.Findings, f)
				}
			}
			slotReport.Findings = append(
				slotReport.Findings,
				finding(kind, chainErr.Step, chainErr.Granule, chainErr.Entry))
		}
		report.Slots = append(report.Slots, slotReport)
	}

	free := image.FreeBitmap()
	for g := 0; g < TotalGranules; g++ {
		if !assigned.Get(g) && !free.Get(g) {
			report.Orphans = append(report.Orphans, Granule(g))
		}
	}
	report.ComputedFree = computedFree
	return report
}
