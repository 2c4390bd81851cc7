package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/encoding"
)

func TestDetect_UTF8Passthrough(t *testing.T) {
	input := "state;label\nchecked_in;Ирсэн\ncancelled;Цуцлагдсан\n"

	r, charset, err := encoding.Detect(bytes.NewReader([]byte(input)))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestDetect_UTF8BOMStripped(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("ready;Бэлэн\n")...)

	r, charset, err := encoding.Detect(bytes.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ready;Бэлэн\n", string(got))
}

func TestDetect_UTF16LE(t *testing.T) {
	// "ok;Ok\n" as UTF-16 little endian with BOM.
	input := []byte{0xFF, 0xFE, 'o', 0, 'k', 0, ';', 0, 'O', 0, 'k', 0, '\n', 0}

	r, charset, err := encoding.Detect(bytes.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF16LE, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ok;Ok\n", string(got))
}

func TestNewUTF8Reader_SingleByteDecodedToValidUTF8(t *testing.T) {
	// Windows-1252 "Descrição" and Windows-1251 "Бэлэн" both arrive as single bytes.
	inputs := [][]byte{
		{'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';', 'x', '\n'},
		{'r', 'e', 'a', 'd', 'y', ';', 0xC1, 0xFD, 0xEB, 0xFD, 0xED, '\n'},
	}

	for _, in := range inputs {
		r, err := encoding.NewUTF8Reader(bytes.NewReader(in))
		require.NoError(t, err)

		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.True(t, utf8.Valid(got))
		assert.True(t, strings.HasSuffix(string(got), "\n"))
	}
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(bytes.NewReader(nil))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}
