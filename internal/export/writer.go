package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxSuffix bounds the search for a free "name (n).gif".
const maxSuffix = 999

// WriteArtifact writes data as dir/name. Unless overwrite is set, an
// existing file is kept and a numbered name is chosen instead. The write
// goes through a temporary file so readers never see a partial GIF.
func WriteArtifact(dir, name string, data []byte, overwrite bool) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if !overwrite {
		free, err := freePath(dir, name)
		if err != nil {
			return "", err
		}
		path = free
	}

	tmp, err := os.CreateTemp(dir, ".framereel-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move %s into place: %w", name, err)
	}
	return path, nil
}

func freePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 0; n <= maxSuffix; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		path := filepath.Join(dir, candidate)
		_, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
