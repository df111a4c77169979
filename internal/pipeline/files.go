package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// fileStore owns the upload directory: original uploads plus the rendered
// generated_<id>.pdf and translated_<id>.pdf files.
type fileStore struct {
	base string
}

func newFileStore(base string) (*fileStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &fileStore{base: base}, nil
}

// cleanName reduces a client supplied name to a safe base name with a
// lower-case extension.
func cleanName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + strings.ToLower(ext)
}

// save writes r under filename, adding " (n)" before the extension when the
// name is taken. Creation uses O_EXCL so concurrent uploads never share a
// path.
func (f *fileStore) save(filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	var (
		out  *os.File
		path string
		err  error
	)
	for idx := 0; idx <= 1000; idx++ {
		candidate := filename
		if idx > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, idx, ext)
		}
		path = filepath.Join(f.base, candidate)
		out, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create upload file: %w", err)
		}
	}
	if out == nil {
		path = filepath.Join(f.base, fmt.Sprintf("%s-%d%s", base, time.Now().UnixNano(), ext))
		if out, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644); err != nil {
			return "", fmt.Errorf("create upload file: %w", err)
		}
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return path, nil
}

func (f *fileStore) generatedPath(id string) string {
	return filepath.Join(f.base, "generated_"+id+".pdf")
}

func (f *fileStore) translatedPath(id string) string {
	return filepath.Join(f.base, "translated_"+id+".pdf")
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
