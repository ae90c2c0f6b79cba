package cocofs

import (
	"bufio"
	"fmt"

	"github.com/thorpej/cocofs/errors"
	"github.com/thorpej/cocofs/file_systems/cocodos"
)

// Dump runs a consistency check on the image and writes a detailed report of
// every directory slot and file chain. Problems in the image are part of the
// report, not errors; the returned error is only for failures writing the
// output. The report is returned for callers that want to act on it.
func (v *Volume) Dump() (cocodos.Report, error) {
	report := v.image.Check()

	out := bufio.NewWriter(v.stdout)
	writeReport(out, &report)
	if err := out.Flush(); err != nil {
		return report, errors.ErrIOFailed.Wrap(err)
	}

	if !report.Clean() {
		v.logger.Debug(
			"consistency check found problems",
			"findings", len(report.Findings()),
			"orphans", len(report.Orphans),
			"computed_free", report.ComputedFree,
			"stored_free", report.StoredFree)
	}
	return report, nil
}

func writeFinding(out *bufio.Writer, finding *cocodos.Finding) {
	switch finding.Kind {
	case cocodos.FindingInvalidGranule:
		fmt.Fprintf(out, "\tINVALID GRANULE #%d: %d\n", finding.Step, finding.Granule)
	case cocodos.FindingDoubleAllocation:
		fmt.Fprintf(
			out,
			"\tGRANULE %d ALREADY ALLOCATED TO FILE %d\n",
			finding.Granule,
			finding.Owner)
	case cocodos.FindingInvalidEntry:
		fmt.Fprintf(
			out,
			"\tINVALID GRANULE MAP ENTRY %2d: %d -> 0x%02x\n",
			finding.Step,
			finding.Granule,
			uint8(finding.Entry))
	case cocodos.FindingFreeInChain:
		fmt.Fprintf(
			out, "\tFREE GRANULE IN CHAIN %2d: %d\n", finding.Step, finding.Granule)
	case cocodos.FindingCycle:
		fmt.Fprintf(out, "\tGRANULE LIST CYCLE DETECTED\n")
	}
}

func writeSlot(out *bufio.Writer, slot *cocodos.SlotReport) {
	entry := &slot.Entry
	if !slot.IsFile() {
		fmt.Fprintf(out, "%2d: entry type 0x%02x, skipping.\n", entry.Slot, uint8(entry.Type))
		return
	}

	stat := Stat{
		Name:      entry.Name.String(),
		Extension: entry.Extension.String(),
		Size:      slot.Size,
		Type:      entry.Type.String(),
		Encoding:  entry.Encoding.String(),
	}
	fmt.Fprintf(out, "%s\n", stat.String())

	// Findings are attached to the step they happened at. Double allocations
	// don't end the walk, so they're interleaved with the granule lines.
	findings := slot.Findings
	for _, step := range slot.Steps {
		for len(findings) > 0 && findings[0].Step <= step.Step {
			writeFinding(out, &findings[0])
			findings = findings[1:]
		}
		if step.Entry.Kind() == cocodos.EntryTerminal {
			fmt.Fprintf(
				out,
				"\tGranule %2d: %d (last, nsec=%d)\n",
				step.Step,
				step.Granule,
				step.Entry.SectorsUsed())
		} else {
			fmt.Fprintf(out, "\tGranule %2d: %d\n", step.Step, step.Granule)
		}
	}
	for i := range findings {
		writeFinding(out, &findings[i])
	}

	fmt.Fprintf(
		out,
		"\tBytes in last sector: %d (0x%02x 0x%02x)\n",
		entry.LastSectorBytes,
		entry.LastSectorBytes>>8,
		entry.LastSectorBytes&0xff)
}

func writeReport(out *bufio.Writer, report *cocodos.Report) {
	fmt.Fprintln(out)
	for i := range report.Slots {
		writeSlot(out, &report.Slots[i])
	}

	files := report.FileCount()
	if files > 0 {
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, summaryLine(files, report.ComputedFree))
	if report.FreeCountMismatch() {
		fmt.Fprintf(
			out,
			"WARNING: FREE GRANULES LOADED %d != COMPUTED %d\n",
			report.StoredFree,
			report.ComputedFree)
	}
	if len(report.Orphans) > 0 {
		fmt.Fprintf(out, "WARNING: %d ORPHANED GRANULE", len(report.Orphans))
		if len(report.Orphans) != 1 {
			fmt.Fprint(out, "S")
		}
		fmt.Fprint(out, ":")
		for _, g := range report.Orphans {
			fmt.Fprintf(out, " %d", g)
		}
		fmt.Fprintln(out)
	}
}
