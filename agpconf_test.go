package agpconf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	m, err := Decode(strings.NewReader(`android { namespace = "com.example" }`), nil)
	require.NoError(t, err)
	require.NotNil(t, m.Namespace)
	assert.Equal(t, "com.example", m.Namespace.Value)
}

type errReader struct{}

var errRead = errors.New("read failed")

func (errReader) Read([]byte) (int, error) { return 0, errRead }

func TestDecodeReadError(t *testing.T) {
	_, err := Decode(errReader{}, nil)
	require.ErrorIs(t, err, errRead)
	assert.Contains(t, err.Error(), "read script")
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join("testdata", "3.build.gradle.kts")

	m, err := DecodeFile(path, nil)
	require.NoError(t, err)
	require.NotNil(t, m.DefaultConfig.ApplicationID)
	assert.Equal(t, path, m.DefaultConfig.ApplicationID.Range.Filename)

	m, err = DecodeFile(path, &ParseOptions{Filename: "app/build.gradle.kts"})
	require.NoError(t, err)
	assert.Equal(t, "app/build.gradle.kts", m.DefaultConfig.ApplicationID.Range.Filename)
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.gradle.kts"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("android {\n"), nil)
	assert.ErrorIs(t, err, ErrParse)

	_, err = Parse([]byte(`android { namespace = "x`), nil)
	assert.ErrorIs(t, err, ErrLex)

	_, err = Parse([]byte("\x00\x01\x02"), nil)
	assert.ErrorIs(t, err, ErrBinaryScript)
}
