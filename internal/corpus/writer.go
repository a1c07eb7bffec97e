package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write encodes prompts as newline-delimited JSON records.
func Write(w io.Writer, prompts []Prompt) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, p := range prompts {
		if err := enc.Encode(p.Record); err != nil {
			return fmt.Errorf("encode record %d: %w", p.Index, err)
		}
	}
	return nil
}

// WriteFile writes prompts to path, replacing any existing file.
// The corpus is written to a temp file in the same directory and renamed
// into place, so readers never observe a partial file.
func WriteFile(path string, prompts []Prompt) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prompts-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, 0644)

	bw := bufio.NewWriterSize(tmp, 64*1024)
	if err := Write(bw, prompts); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flush output: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close output: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// ReadRecords decodes newline-delimited JSON records.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	dec := json.NewDecoder(r)
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	return records, nil
}
