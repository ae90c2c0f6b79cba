package filenames_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thorpej/cocofs/errors"
	"github.com/thorpej/cocofs/file_systems/cocodos"
	"github.com/thorpej/cocofs/utilities/filenames"
)

func TestGuessFromExtension(t *testing.T) {
	tests := map[string]filenames.TypeGuess{
		"asm": {Type: cocodos.TypeData, Encoding: cocodos.EncodingASCII},
		"BAS": {Type: cocodos.TypeBasic, Encoding: cocodos.EncodingBinary},
		"bin": {Type: cocodos.TypeCode, Encoding: cocodos.EncodingBinary},
		"DAT": {Type: cocodos.TypeData, Encoding: cocodos.EncodingBinary},
		"txt": {Type: cocodos.TypeText, Encoding: cocodos.EncodingASCII},
		"c":   {Type: cocodos.TypeData, Encoding: cocodos.EncodingASCII},
		"H":   {Type: cocodos.TypeData, Encoding: cocodos.EncodingASCII},
		"xyz": filenames.DefaultGuess,
		"":    filenames.DefaultGuess,
	}

	for extension, expected := range tests {
		assert.Equalf(t, expected, filenames.GuessFromExtension(extension), "extension %q", extension)
	}
}

func TestResolve__NoQualifiers(t *testing.T) {
	resolved, err := filenames.Resolve("src/games/hello.bas")
	require.NoError(t, err)
	assert.Equal(t, "src/games/hello.bas", resolved.HostPath)
	assert.Equal(t, "HELLO   ", string(resolved.Info.Name[:]))
	assert.Equal(t, "BAS", string(resolved.Info.Extension[:]))
	assert.Equal(t, cocodos.TypeBasic, resolved.Info.Type)
	assert.Equal(t, cocodos.EncodingBinary, resolved.Info.Encoding)
}

func TestResolve__NoExtensionDefaults(t *testing.T) {
	resolved, err := filenames.Resolve("README")
	require.NoError(t, err)
	assert.Equal(t, cocodos.TypeData, resolved.Info.Type)
	assert.Equal(t, cocodos.EncodingBinary, resolved.Info.Encoding)
}

func TestResolve__Qualifiers(t *testing.T) {
	tests := []struct {
		Arg      string
		HostPath string
		Type     cocodos.FileType
		Encoding cocodos.Encoding
	}{
		{"prog.txt[Code]", "prog.txt", cocodos.TypeCode, cocodos.EncodingBinary},
		{"prog.txt[ascii]", "prog.txt", cocodos.TypeData, cocodos.EncodingASCII},
		{"a/b/prog[text,ascii]", "a/b/prog", cocodos.TypeText, cocodos.EncodingASCII},
		{"prog.bas[Binary,Basic]", "prog.bas", cocodos.TypeBasic, cocodos.EncodingBinary},
	}

	for _, test := range tests {
		t.Run(test.Arg, func(t *testing.T) {
			resolved, err := filenames.Resolve(test.Arg)
			require.NoError(t, err)
			assert.Equal(t, test.HostPath, resolved.HostPath)
			assert.Equal(t, test.Type, resolved.Info.Type)
			assert.Equal(t, test.Encoding, resolved.Info.Encoding)
		})
	}
}

func TestResolve__BracketAtStartIsPartOfName(t *testing.T) {
	resolved, err := filenames.Resolve("[x]")
	require.NoError(t, err)
	assert.Equal(t, "[x]", resolved.HostPath)
	assert.Equal(t, "[X]     ", string(resolved.Info.Name[:]))
}

func TestResolve__BadQualifiers(t *testing.T) {
	args := []string{
		"file.dat[Code,Text]",
		"file.dat[ASCII,ascii]",
		"file.dat[Weird]",
		"file.dat[Code,Binary,ASCII]",
		"file.dat[]",
	}

	for _, arg := range args {
		t.Run(arg, func(t *testing.T) {
			_, err := filenames.Resolve(arg)
			assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		})
	}
}

func TestResolve__NameTooLong(t *testing.T) {
	_, err := filenames.Resolve("dir/muchtoolong.bas")
	assert.ErrorIs(t, err, errors.ErrNameTooLong)

	_, err = filenames.Resolve("short.text[Text]")
	assert.ErrorIs(t, err, errors.ErrNameTooLong)
}
