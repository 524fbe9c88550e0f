package agpconf

import (
	"fmt"
	"io"
	"os"
)

// Parse runs the whole pipeline on a build script and returns its model.
// Only lexing and delimiter errors are fatal.
func Parse(data []byte, opt *ParseOptions) (*Model, error) {
	f, err := ParseFile(data, opt)
	if err != nil {
		return nil, err
	}

	return Build(Normalize(f), opt), nil
}

// Decode parses a build script from reader.
func Decode(r io.Reader, opt *ParseOptions) (*Model, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	return Parse(b, opt)
}

// DecodeFile parses a build script from a file. The path becomes the filename
// of source ranges unless opt sets one.
func DecodeFile(path string, opt *ParseOptions) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	popt := opt.normalize()
	if popt.Filename == "" {
		popt.Filename = path
	}

	return Parse(b, &popt)
}
