package cocofs

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/thorpej/cocofs/errors"
	"github.com/thorpej/cocofs/file_systems/cocodos"
	"github.com/thorpej/cocofs/utilities/filenames"
)

// isCorruption reports whether an error means the image itself is damaged.
func isCorruption(err error) bool {
	return stderrors.Is(err, errors.ErrFileSystemCorrupted)
}

// Remove deletes the named files, writing the image out after each one.
//
// Files that don't exist are reported and skipped. A damaged chain or a failure
// writing the image stops the whole batch, since carrying on could compound the
// damage.
func (v *Volume) Remove(names ...string) error {
	var result *multierror.Error

	for _, name := range names {
		entry, err := v.image.LookupName(name)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			continue
		}

		if err = v.image.Remove(&entry); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			break
		}
		v.logger.Debug("removed file", "file", entry.FileName(), "slot", entry.Slot)

		if err = v.Flush(); err != nil {
			result = multierror.Append(result, err)
			break
		}
	}
	return result.ErrorOrNil()
}

// CopyIn adds host files to the image, writing the image out after each one.
// Arguments may carry type and encoding qualifiers as described in package
// [filenames].
//
// A file that can't be added, whether because of its name, because it already
// exists, or because it doesn't fit, is reported and skipped, and the image is
// left unchanged by it. A failure writing the image stops the batch.
func (v *Volume) CopyIn(args ...string) error {
	var result *multierror.Error

	for _, arg := range args {
		resolved, err := filenames.Resolve(arg)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", arg, err))
			continue
		}

		entry, err := v.copyInFile(resolved)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", resolved.HostPath, err))
			if isCorruption(err) {
				break
			}
			continue
		}
		v.logger.Debug(
			"added file",
			"source", resolved.HostPath,
			"file", entry.FileName(),
			"type", entry.Type.String(),
			"encoding", entry.Encoding.String(),
			"first_granule", entry.FirstGranule)

		if err = v.Flush(); err != nil {
			result = multierror.Append(result, err)
			break
		}
	}
	return result.ErrorOrNil()
}

func (v *Volume) copyInFile(resolved filenames.Resolved) (cocodos.DirectoryEntry, error) {
	if existing, err := v.image.Lookup(resolved.Info.Name, resolved.Info.Extension); err == nil {
		return cocodos.DirectoryEntry{}, errors.ErrExists.WithMessage(existing.FileName())
	}

	source, err := os.Open(resolved.HostPath)
	if err != nil {
		return cocodos.DirectoryEntry{}, errors.ErrIOFailed.Wrap(err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return cocodos.DirectoryEntry{}, errors.ErrIOFailed.Wrap(err)
	}
	if !info.Mode().IsRegular() {
		return cocodos.DirectoryEntry{}, errors.ErrInvalidArgument.WithMessage("not a regular file")
	}
	return v.image.AddFile(source, info.Size(), resolved.Info)
}

// CopyOut extracts the named files into `destDir`. Each is written to a host
// file named NAME.EXT, or just NAME if it has no extension.
//
// Each file is independent: a missing file or a damaged chain is reported and
// the rest are still extracted. If extraction fails partway through, whatever
// was already written to the host file is left there.
func (v *Volume) CopyOut(destDir string, names ...string) error {
	var result *multierror.Error

	for _, name := range names {
		entry, err := v.image.LookupName(name)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			continue
		}

		outputPath := filepath.Join(destDir, entry.FileName())
		if err = v.copyOutFile(&entry, outputPath); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", outputPath, err))
		}
	}
	return result.ErrorOrNil()
}

func (v *Volume) copyOutFile(entry *cocodos.DirectoryEntry, outputPath string) error {
	if entry.LastSectorBytes > cocodos.BytesPerSector {
		v.logger.Warn(
			"unexpected last sector byte count, clamping",
			"file", entry.FileName(),
			"last_sector_bytes", entry.LastSectorBytes,
			"clamped_to", cocodos.BytesPerSector)
	}

	output, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.ErrIOFailed.Wrap(err)
	}

	written, err := v.image.WriteFileTo(entry, output)
	closeErr := output.Close()
	if err != nil {
		v.logger.Warn(
			"extraction failed, output is incomplete",
			"path", outputPath,
			"bytes_written", written)
		return err
	}
	if closeErr != nil {
		return errors.ErrIOFailed.Wrap(closeErr)
	}

	v.logger.Debug("extracted file", "file", entry.FileName(), "path", outputPath, "bytes", written)
	return nil
}

// Format replaces the image with a freshly formatted one and writes it out.
func (v *Volume) Format() error {
	v.image = cocodos.Format()
	return v.Flush()
}
