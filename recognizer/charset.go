package recognizer

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Charset maps model class indices to characters. Index 0 is the CTC blank.
type Charset []string

// blank is the placeholder stored at index 0.
const blank = "<blank>"

// DefaultCharset returns the plate alphabet: digits and upper-case letters.
func DefaultCharset() Charset {
	cs := Charset{blank}
	for c := '0'; c <= '9'; c++ {
		cs = append(cs, string(c))
	}
	for c := 'A'; c <= 'Z'; c++ {
		cs = append(cs, string(c))
	}
	return cs
}

// LoadCharset reads a recognition dictionary with one character per line.
//
// A blank class is prepended and, when useSpace is set, a space class is
// appended, matching the layout of PaddleOCR recognition heads.
//
// Arguments:
//   - path: Dictionary file path.
//   - useSpace: Whether the model was trained with a trailing space class.
//
// Returns:
//   - Charset: The class table.
//   - error: An error if the file cannot be read or is empty.
func LoadCharset(path string, useSpace bool) (Charset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open charset")
	}
	defer f.Close()

	cs := Charset{blank}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		cs = append(cs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read charset")
	}
	if len(cs) == 1 {
		return nil, errors.Errorf("charset %s is empty", path)
	}
	if useSpace {
		cs = append(cs, " ")
	}
	return cs, nil
}

// Len returns the number of classes including the blank.
func (c Charset) Len() int { return len(c) }
