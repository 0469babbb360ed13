package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFilename(t *testing.T) {
	cases := []struct {
		filename string
		format   Format
	}{
		{"out.json", FormatJSON},
		{"out.jsonl", FormatJSONStream},
		{"out.json.gz", FormatJSONGz},
		{"out.jsonl.gz", FormatJSONStreamGz},
		{"out.json.snappy", FormatJSONSnappy},
		{"out.jsonl.snappy", FormatJSONStreamSnappy},
		{"out.sqlite", FormatSQLite},
		{"some/dir/cosmogony.json", FormatJSON},
	}

	for _, c := range cases {
		format, err := FromFilename(c.filename)
		require.NoError(t, err, c.filename)
		assert.Equal(t, c.format, format, c.filename)
	}
}

func TestFromFilename_Unknown(t *testing.T) {
	_, err := FromFilename("out.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json")
	assert.Contains(t, err.Error(), ".jsonl.snappy")
}
