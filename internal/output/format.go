// Package output serialises a built cosmogony to disk. The format is
// inferred from the output filename suffix.
package output

import (
	"fmt"
	"strings"
)

// Format is one of the supported output encodings.
type Format int

const (
	FormatJSON Format = iota
	FormatJSONGz
	FormatJSONSnappy
	FormatJSONStream
	FormatJSONStreamGz
	FormatJSONStreamSnappy
	FormatSQLite
)

// extensions maps filename suffixes to formats. Longer suffixes are
// listed first so ".json.gz" wins over ".json".
var extensions = []struct {
	ext    string
	format Format
}{
	{".json.gz", FormatJSONGz},
	{".jsonl.gz", FormatJSONStreamGz},
	{".json.snappy", FormatJSONSnappy},
	{".jsonl.snappy", FormatJSONStreamSnappy},
	{".json", FormatJSON},
	{".jsonl", FormatJSONStream},
	{".sqlite", FormatSQLite},
}

// FromFilename infers the output format from the filename suffix.
func FromFilename(filename string) (Format, error) {
	for _, e := range extensions {
		if strings.HasSuffix(filename, e.ext) {
			return e.format, nil
		}
	}

	accepted := make([]string, len(extensions))
	for i, e := range extensions {
		accepted[i] = e.ext
	}
	return 0, fmt.Errorf("unable to detect the file format from filename %q, accepted extensions are: %s",
		filename, strings.Join(accepted, ", "))
}

// streaming reports whether the format writes one zone per line.
func (f Format) streaming() bool {
	return f == FormatJSONStream || f == FormatJSONStreamGz || f == FormatJSONStreamSnappy
}
