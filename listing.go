package cocofs

import (
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/hashicorp/go-multierror"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/thorpej/cocofs/errors"
	"github.com/thorpej/cocofs/file_systems/cocodos"
)

// Stat is the directory information for one file.
type Stat struct {
	Name      string `csv:"name"`
	Extension string `csv:"extension"`
	Size      uint   `csv:"size"`
	Type      string `csv:"type"`
	Encoding  string `csv:"encoding"`

	Entry cocodos.DirectoryEntry `csv:"-"`
	// SizeError is set if the file's chain is damaged. Size is then the size of
	// the part of the chain that could be followed.
	SizeError error `csv:"-"`
}

// StatEntry builds the Stat for a directory entry.
func StatEntry(image *cocodos.Image, entry cocodos.DirectoryEntry) Stat {
	size, err := image.FileSize(&entry)
	return Stat{
		Name:      entry.Name.String(),
		Extension: entry.Extension.String(),
		Size:      size,
		Type:      entry.Type.String(),
		Encoding:  entry.Encoding.String(),
		Entry:     entry,
		SizeError: err,
	}
}

func plural(n uint) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// String renders the stat as one line of a directory listing.
func (s *Stat) String() string {
	return fmt.Sprintf(
		"  %-8s   %-3s  %6d byte%-1s (%s, %s)",
		s.Name,
		s.Extension,
		s.Size,
		plural(s.Size),
		s.Type,
		s.Encoding)
}

// ListFormat selects how [Volume.List] renders its output.
type ListFormat string

const (
	ListText  ListFormat = "text"
	ListTable ListFormat = "table"
	ListCSV   ListFormat = "csv"
)

// ParseListFormat validates a list format name.
func ParseListFormat(name string) (ListFormat, error) {
	switch format := ListFormat(name); format {
	case ListText, ListTable, ListCSV:
		return format, nil
	default:
		return "", errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("unknown listing format %q, expected text, table, or csv", name))
	}
}

func summaryLine(files int, freeGranules uint) string {
	return fmt.Sprintf(
		"%d file%s, %d granule%s (%d bytes) free",
		files,
		plural(uint(files)),
		freeGranules,
		plural(freeGranules),
		freeGranules*cocodos.BytesPerGranule)
}

// List writes a directory listing. With no names, every file is listed along
// with a summary of free space. Otherwise only the named files are listed; any
// that don't exist are reported in the returned error and the rest are still
// listed.
func (v *Volume) List(format ListFormat, names ...string) error {
	var stats []Stat
	var result *multierror.Error

	if len(names) == 0 {
		for _, entry := range v.image.Files() {
			stats = append(stats, StatEntry(v.image, entry))
		}
	} else {
		for _, name := range names {
			entry, err := v.image.LookupName(name)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
				continue
			}
			stats = append(stats, StatEntry(v.image, entry))
		}
	}

	for i := range stats {
		if stats[i].SizeError != nil {
			v.logger.Warn(
				"directory entry has a damaged granule chain",
				"file", stats[i].Entry.FileName(),
				"error", stats[i].SizeError)
		}
	}

	var err error
	switch format {
	case ListTable:
		err = v.renderTable(stats, len(names) == 0)
	case ListCSV:
		err = gocsv.Marshal(stats, v.stdout)
	default:
		err = v.renderText(stats, len(names) == 0)
	}
	if err != nil {
		result = multierror.Append(result, errors.ErrIOFailed.Wrap(err))
	}
	return result.ErrorOrNil()
}

func (v *Volume) renderText(stats []Stat, withSummary bool) error {
	var err error
	out := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(v.stdout, format, args...)
		}
	}

	if withSummary {
		out("\n")
	}
	for i := range stats {
		out("%s\n", stats[i].String())
	}
	if withSummary {
		if len(stats) > 0 {
			out("\n")
		}
		out("%s\n", summaryLine(len(stats), v.image.FreeGranules()))
	}
	return err
}

func (v *Volume) renderTable(stats []Stat, withSummary bool) error {
	t := table.NewWriter()
	t.SetOutputMirror(v.stdout)
	t.AppendHeader(table.Row{"Name", "Ext", "Size", "Type", "Encoding"})
	for i := range stats {
		s := &stats[i]
		t.AppendRow(table.Row{s.Name, s.Extension, s.Size, s.Type, s.Encoding})
	}
	if withSummary {
		t.AppendFooter(table.Row{"", "", "", "", summaryLine(len(stats), v.image.FreeGranules())})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	t.Render()
	return nil
}
