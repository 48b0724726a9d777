package recommend

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// artifactVersion is bumped whenever the encoded layout changes
const artifactVersion = 1

type artifact struct {
	Version int
	Model   Model
}

// SaveModel writes a gzip-compressed gob of m to path via temp file and rename
func SaveModel(path string, m *Model) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(artifact{Version: artifactVersion, Model: *m}); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace model: %w", err)
	}
	return nil
}

// LoadModel reads a model written by SaveModel. A missing file returns an
// error matching os.ErrNotExist.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open model archive: %w", err)
	}
	defer zr.Close()

	var a artifact
	if err := gob.NewDecoder(zr).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("unsupported model version %d", a.Version)
	}
	return &a.Model, nil
}

// DeleteModel removes the artifact; a missing file is not an error
func DeleteModel(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
