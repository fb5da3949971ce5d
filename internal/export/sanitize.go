// Package export writes finished animations to the local filesystem.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

const (
	gifExt = ".gif"

	// maxStemRunes keeps stem + ".gif" within common file name limits.
	maxStemRunes = 120 - len(gifExt)

	defaultStem = "animation"
)

// ErrInvalidOutputDir wraps every output directory rejection.
var ErrInvalidOutputDir = errors.New("invalid output_dir")

// GIFFileName turns a user supplied name into a safe "<stem>.gif". A
// trailing .gif in any case is dropped before cleaning, other extensions
// stay part of the stem. When nothing usable remains the stem of fallback
// is tried, then "animation".
func GIFFileName(name, fallback string) string {
	for _, candidate := range []string{name, fallback} {
		if stem := gifStem(candidate); stem != "" {
			return stem + gifExt
		}
	}
	return defaultStem + gifExt
}

func gifStem(name string) string {
	if strings.EqualFold(filepath.Ext(name), gifExt) {
		name = name[:len(name)-len(gifExt)]
	}

	stem := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case strings.ContainsRune(" -_.,()", r):
			return r
		default:
			return '_'
		}
	}, name)

	// Leading dots would hide the file, trailing ones collide with the extension.
	stem = strings.Trim(strings.TrimSpace(stem), ".")
	if runes := []rune(stem); len(runes) > maxStemRunes {
		stem = strings.TrimSpace(string(runes[:maxStemRunes]))
	}
	return stem
}

// ValidateOutputDir checks that dir names an existing directory given as a
// clean path without "..". Failures wrap ErrInvalidOutputDir.
func ValidateOutputDir(dir string) error {
	switch {
	case strings.TrimSpace(dir) == "":
		return fmt.Errorf("%w: output_dir is required", ErrInvalidOutputDir)
	case slices.Contains(strings.Split(filepath.ToSlash(dir), "/"), ".."):
		return fmt.Errorf("%w: output_dir cannot contain path traversal", ErrInvalidOutputDir)
	case filepath.Clean(dir) != dir:
		return fmt.Errorf("%w: output_dir must be a clean path", ErrInvalidOutputDir)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s does not exist", ErrInvalidOutputDir, dir)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidOutputDir, dir)
	}
	return nil
}
