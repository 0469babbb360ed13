package output

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MeKo-Tech/zonograph/internal/pipeline"
	"github.com/golang/snappy"
)

// Write serialises the cosmogony to path, picking the encoding from
// the filename suffix.
func Write(cosmogony *pipeline.Cosmogony, path string) error {
	format, err := FromFilename(path)
	if err != nil {
		return err
	}

	if format == FormatSQLite {
		return writeSQLite(cosmogony, path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close() // nolint:errcheck

	buffered := bufio.NewWriter(file)
	sink, closeSink, err := wrapCompression(buffered, format)
	if err != nil {
		return err
	}

	if format.streaming() {
		err = writeStream(cosmogony, sink)
	} else {
		err = writeDocument(cosmogony, sink)
	}
	if err != nil {
		return err
	}

	if err := closeSink(); err != nil {
		return fmt.Errorf("failed to finish compression: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// wrapCompression layers the format's compressor over w. The returned
// close function flushes the compressor without closing w.
func wrapCompression(w io.Writer, format Format) (io.Writer, func() error, error) {
	switch format {
	case FormatJSONGz, FormatJSONStreamGz:
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil
	case FormatJSONSnappy, FormatJSONStreamSnappy:
		sn := snappy.NewBufferedWriter(w)
		return sn, sn.Close, nil
	default:
		return w, func() error { return nil }, nil
	}
}

// writeDocument emits the whole cosmogony as a single JSON document.
func writeDocument(cosmogony *pipeline.Cosmogony, w io.Writer) error {
	data, err := json.Marshal(cosmogony)
	if err != nil {
		return fmt.Errorf("failed to marshal cosmogony: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write cosmogony: %w", err)
	}
	return nil
}

// writeStream emits one zone per line.
func writeStream(cosmogony *pipeline.Cosmogony, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for i := range cosmogony.Zones {
		if err := encoder.Encode(&cosmogony.Zones[i]); err != nil {
			return fmt.Errorf("failed to write zone %s: %w", cosmogony.Zones[i].OSMID, err)
		}
	}
	return nil
}
