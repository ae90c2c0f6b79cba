package cocodos

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/noxer/bytewriter"
	"github.com/thorpej/cocofs/errors"
)

// FileType is the type byte of a directory entry.
type FileType uint8

const (
	TypeBasic FileType = 0x00
	TypeData  FileType = 0x01
	TypeCode  FileType = 0x02
	TypeText  FileType = 0x03
	// TypeFree marks an unused directory entry.
	TypeFree FileType = 0xff
)

// Encoding is the encoding byte of a directory entry.
type Encoding uint8

const (
	EncodingBinary Encoding = 0x00
	EncodingASCII  Encoding = 0xff
)

var fileTypeNames = map[FileType]string{
	TypeBasic: "Basic",
	TypeData:  "Data",
	TypeCode:  "Code",
	TypeText:  "Text",
}

var encodingNames = map[Encoding]string{
	EncodingBinary: "Binary",
	EncodingASCII:  "ASCII",
}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("<type 0x%02x>", uint8(t))
}

// IsFile reports whether the type is one of the four defined file types.
func (t FileType) IsFile() bool {
	return t <= TypeText
}

func (e Encoding) String() string {
	if name, ok := encodingNames[e]; ok {
		return name
	}
	return fmt.Sprintf("<encoding 0x%02x>", uint8(e))
}

// ParseFileType looks up a file type by its name, ignoring case.
func ParseFileType(name string) (FileType, bool) {
	for value, typeName := range fileTypeNames {
		if strings.EqualFold(typeName, name) {
			return value, true
		}
	}
	return 0, false
}

// ParseEncoding looks up an encoding by its name, ignoring case.
func ParseEncoding(name string) (Encoding, bool) {
	for value, encodingName := range encodingNames {
		if strings.EqualFold(encodingName, name) {
			return value, true
		}
	}
	return 0, false
}

// RawName is the on-disk form of a file name: uppercase, padded with spaces.
type RawName [8]byte

// RawExtension is the on-disk form of a file extension.
type RawExtension [3]byte

func (n RawName) String() string {
	return string(bytes.TrimRight(n[:], " "))
}

func (x RawExtension) String() string {
	return string(bytes.TrimRight(x[:], " "))
}

func mapChar(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return 'A' + (c - 'a')
	}
	return c
}

// NormalizeName converts a file name into its on-disk representation. The name
// is split on the first period; everything after it is the extension. Lowercase
// ASCII letters are converted to uppercase, and nothing else is touched.
func NormalizeName(fullName string) (RawName, RawExtension, error) {
	var name RawName
	var ext RawExtension
	copy(name[:], "        ")
	copy(ext[:], "   ")

	stem, extension, _ := strings.Cut(fullName, ".")
	if len(stem) > len(name) {
		return name, ext, errors.ErrNameTooLong.WithMessage(
			fmt.Sprintf("file name can be at most eight characters: %q", fullName))
	}
	if len(extension) > len(ext) {
		return name, ext, errors.ErrNameTooLong.WithMessage(
			fmt.Sprintf("file extension can be at most three characters: %q", fullName))
	}

	for i := 0; i < len(stem); i++ {
		name[i] = mapChar(stem[i])
	}
	for i := 0; i < len(extension); i++ {
		ext[i] = mapChar(extension[i])
	}
	return name, ext, nil
}

// DirectoryEntry is the decoded form of one directory slot.
type DirectoryEntry struct {
	// Slot is the index of the entry in the directory, [0, TotalDirectoryEntries).
	Slot         int
	Name         RawName
	Extension    RawExtension
	Type         FileType
	Encoding     Encoding
	FirstGranule Granule
	// LastSectorBytes is the number of bytes used in the last sector of the
	// file. It should never exceed [BytesPerSector] but corrupt images may
	// have anything here.
	LastSectorBytes uint16
}

// IsFree reports whether the slot is unused.
func (e *DirectoryEntry) IsFree() bool {
	return e.Type == TypeFree
}

// FileName returns the user-facing form of the name, e.g. "HELLO.BAS". Files
// without an extension have no trailing period.
func (e *DirectoryEntry) FileName() string {
	ext := e.Extension.String()
	if ext == "" {
		return e.Name.String()
	}
	return e.Name.String() + "." + ext
}

// ClampedLastSectorBytes returns LastSectorBytes, limited to one sector.
func (e *DirectoryEntry) ClampedLastSectorBytes() uint {
	if e.LastSectorBytes > BytesPerSector {
		return BytesPerSector
	}
	return uint(e.LastSectorBytes)
}

func decodeDirectoryEntry(slot int, raw []byte) DirectoryEntry {
	entry := DirectoryEntry{
		Slot:            slot,
		Type:            FileType(raw[11]),
		Encoding:        Encoding(raw[12]),
		FirstGranule:    Granule(raw[13]),
		LastSectorBytes: binary.BigEndian.Uint16(raw[14:16]),
	}
	copy(entry.Name[:], raw[0:8])
	copy(entry.Extension[:], raw[8:11])
	return entry
}

// encode writes the entry's fields into a 32-byte slot. The reserved bytes at
// the end of the slot are not touched.
func (e *DirectoryEntry) encode(raw []byte) {
	writer := bytewriter.New(raw)
	writer.Write(e.Name[:])
	writer.Write(e.Extension[:])
	writer.Write([]byte{byte(e.Type), byte(e.Encoding), byte(e.FirstGranule)})
	binary.Write(writer, binary.BigEndian, e.LastSectorBytes)
}

// ReadDirectoryEntry decodes the directory entry in `slot`.
func (image *Image) ReadDirectoryEntry(slot int) (DirectoryEntry, error) {
	if slot < 0 || slot >= TotalDirectoryEntries {
		return DirectoryEntry{}, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"invalid directory slot: %d not in range [0, %d)",
				slot,
				TotalDirectoryEntries))
	}
	return decodeDirectoryEntry(slot, image.directorySlot(slot)), nil
}

// WriteDirectoryEntry encodes `entry` into the slot given by entry.Slot.
func (image *Image) WriteDirectoryEntry(entry DirectoryEntry) error {
	if entry.Slot < 0 || entry.Slot >= TotalDirectoryEntries {
		return errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"invalid directory slot: %d not in range [0, %d)",
				entry.Slot,
				TotalDirectoryEntries))
	}
	entry.encode(image.directorySlot(entry.Slot))
	return nil
}

// DirectoryEntries decodes every slot of the directory, used or not, in slot
// order.
func (image *Image) DirectoryEntries() []DirectoryEntry {
	entries := make([]DirectoryEntry, TotalDirectoryEntries)
	for i := range entries {
		entries[i] = decodeDirectoryEntry(i, image.directorySlot(i))
	}
	return entries
}

// Files returns the directory entries that hold one of the four file types, in
// slot order.
func (image *Image) Files() []DirectoryEntry {
	var files []DirectoryEntry
	for _, entry := range image.DirectoryEntries() {
		if entry.Type.IsFile() {
			files = append(files, entry)
		}
	}
	return files
}

// Lookup finds the first non-free directory entry whose name and extension
// match exactly. Nothing guarantees that names are unique on a damaged disk;
// if there are duplicates, the lowest-numbered slot wins.
func (image *Image) Lookup(name RawName, ext RawExtension) (DirectoryEntry, error) {
	for slot := 0; slot < TotalDirectoryEntries; slot++ {
		raw := image.directorySlot(slot)
		if FileType(raw[11]) == TypeFree {
			continue
		}
		if !bytes.Equal(raw[0:8], name[:]) || !bytes.Equal(raw[8:11], ext[:]) {
			continue
		}
		return decodeDirectoryEntry(slot, raw), nil
	}

	var entry DirectoryEntry
	entry.Name = name
	entry.Extension = ext
	return DirectoryEntry{}, errors.ErrNotFound.WithMessage(entry.FileName())
}

// LookupName normalizes `fullName` and looks it up with [Image.Lookup].
func (image *Image) LookupName(fullName string) (DirectoryEntry, error) {
	name, ext, err := NormalizeName(fullName)
	if err != nil {
		return DirectoryEntry{}, err
	}
	return image.Lookup(name, ext)
}

// ErrDirectoryFull is returned when every directory slot is in use.
var ErrDirectoryFull = errors.NewWithMessage(errors.ENOSPC, "no directory entries available")

// FindFreeSlot returns the index of the first unused directory slot.
func (image *Image) FindFreeSlot() (int, error) {
	for slot := 0; slot < TotalDirectoryEntries; slot++ {
		if FileType(image.directorySlot(slot)[11]) == TypeFree {
			return slot, nil
		}
	}
	return -1, ErrDirectoryFull
}

// FreeSlot resets every byte of a directory slot to 0xFF. `slot` must be
// valid.
func (image *Image) FreeSlot(slot int) {
	raw := image.directorySlot(slot)
	for i := range raw {
		raw[i] = 0xff
	}
}
