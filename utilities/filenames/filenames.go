// Package filenames turns host file names given on the command line into CoCo
// DOS directory information.
//
// A name may end with qualifiers in square brackets overriding the file type
// and encoding, e.g. `loader.bin[Code,Binary]` or `notes.txt[Data]`. Qualifier
// names are the ones shown in directory listings, and case doesn't matter.
// Without qualifiers, the type and encoding are guessed from the extension.
package filenames

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/thorpej/cocofs/errors"
	"github.com/thorpej/cocofs/file_systems/cocodos"
)

type typeGuessRow struct {
	Extension string `csv:"extension"`
	Type      string `csv:"type"`
	Encoding  string `csv:"encoding"`
	Notes     string `csv:"notes"`
}

// TypeGuess is the type and encoding assumed for files with a given extension.
type TypeGuess struct {
	Type     cocodos.FileType
	Encoding cocodos.Encoding
}

// DefaultGuess is used for extensions not in the guess table.
var DefaultGuess = TypeGuess{Type: cocodos.TypeData, Encoding: cocodos.EncodingBinary}

//go:embed default-types.csv
var defaultTypesRawCSV string
var typeGuesses map[string]TypeGuess

// GuessFromExtension returns the type and encoding for a host file extension
// (without the period).
func GuessFromExtension(extension string) TypeGuess {
	if guess, ok := typeGuesses[strings.ToUpper(extension)]; ok {
		return guess
	}
	return DefaultGuess
}

// Resolved is a host file name converted to its CoCo DOS form.
type Resolved struct {
	// HostPath is the argument with any qualifiers removed.
	HostPath string
	Info     cocodos.FileInfo
}

// splitQualifiers separates a trailing "[...]" from `arg`. The bracket must not
// be the first character.
func splitQualifiers(arg string) (string, []string) {
	if !strings.HasSuffix(arg, "]") {
		return arg, nil
	}
	open := strings.LastIndexByte(arg, '[')
	if open <= 0 {
		return arg, nil
	}

	inner := arg[open+1 : len(arg)-1]
	first, second, found := strings.Cut(inner, ",")
	if found {
		return arg[:open], []string{first, second}
	}
	return arg[:open], []string{first}
}

// Resolve parses a copy-in argument. The CoCo name is taken from the final
// path component of the host path.
func Resolve(arg string) (Resolved, error) {
	hostPath, qualifiers := splitQualifiers(arg)
	guess := DefaultGuess
	haveType := false
	haveEncoding := false

	for _, qualifier := range qualifiers {
		if fileType, ok := cocodos.ParseFileType(qualifier); ok {
			if haveType {
				return Resolved{}, errors.ErrInvalidArgument.WithMessage(
					fmt.Sprintf("multiple types specified for %s", hostPath))
			}
			guess.Type = fileType
			haveType = true
		} else if encoding, ok := cocodos.ParseEncoding(qualifier); ok {
			if haveEncoding {
				return Resolved{}, errors.ErrInvalidArgument.WithMessage(
					fmt.Sprintf("multiple encodings specified for %s", hostPath))
			}
			guess.Encoding = encoding
			haveEncoding = true
		} else {
			return Resolved{}, errors.ErrInvalidArgument.WithMessage(
				fmt.Sprintf(
					"unknown type/encoding qualifier for %s: %q", hostPath, qualifier))
		}
	}

	base := hostPath
	if i := strings.LastIndexByte(hostPath, '/'); i >= 0 {
		base = hostPath[i+1:]
	}

	name, ext, err := cocodos.NormalizeName(base)
	if err != nil {
		return Resolved{}, errors.ErrNameTooLong.WithMessage(
			fmt.Sprintf("invalid file name: %s", hostPath))
	}

	if !haveType && !haveEncoding {
		if _, extension, found := strings.Cut(base, "."); found {
			guess = GuessFromExtension(extension)
		}
	}

	return Resolved{
		HostPath: hostPath,
		Info: cocodos.FileInfo{
			Name:      name,
			Extension: ext,
			Type:      guess.Type,
			Encoding:  guess.Encoding,
		},
	}, nil
}

func init() {
	csvReader := csv.NewReader(strings.NewReader(defaultTypesRawCSV))
	csvReader.Comma = '|'

	var rows []typeGuessRow
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		panic(fmt.Errorf("failed to decode default type table: %w", err))
	}

	typeGuesses = make(map[string]TypeGuess, len(rows))
	for i, row := range rows {
		fileType, ok := cocodos.ParseFileType(row.Type)
		if !ok {
			panic(fmt.Errorf("row %d: unknown file type %q", i+1, row.Type))
		}
		encoding, ok := cocodos.ParseEncoding(row.Encoding)
		if !ok {
			panic(fmt.Errorf("row %d: unknown encoding %q", i+1, row.Encoding))
		}

		extension := strings.ToUpper(row.Extension)
		if _, exists := typeGuesses[extension]; exists {
			panic(fmt.Errorf("duplicate definition for extension %q on row %d", extension, i+1))
		}
		typeGuesses[extension] = TypeGuess{Type: fileType, Encoding: encoding}
	}
}
