package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestGIFFileName(t *testing.T) {
	tests := []struct {
		name         string
		in, fallback string
		want         string
	}{
		{"plain", "loop.gif", "x.gif", "loop.gif"},
		{"upper case extension", "loop.GIF", "x.gif", "loop.gif"},
		{"extension added", "loop", "x.gif", "loop.gif"},
		{"other extension kept in stem", "frames.png", "x.gif", "frames.png.gif"},
		{"control chars dropped", " A\nB\rC\tD\x00 ", "", "ABCD.gif"},
		{"allowed punctuation kept", "Az09 -_,()", "", "Az09 -_,().gif"},
		{"disallowed replaced", "bad<>|\"name", "", "bad____name.gif"},
		{"path separators replaced", "../../etc/passwd", "", "_.._etc_passwd.gif"},
		{"hidden file dots trimmed", "..gif", "", "animation.gif"},
		{"unicode letters", "动画 1", "", "动画 1.gif"},
		{"empty uses fallback", "", "animation_20240301T100000.gif", "animation_20240301T100000.gif"},
		{"only separators", "///", "", "___.gif"},
		{"nothing usable", "", "", "animation.gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GIFFileName(tt.in, tt.fallback); got != tt.want {
				t.Errorf("GIFFileName(%q, %q) = %q, want %q", tt.in, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestGIFFileName_Truncates(t *testing.T) {
	got := GIFFileName(strings.Repeat("a", 300), "")
	if !strings.HasSuffix(got, ".gif") {
		t.Fatalf("got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 120 {
		t.Errorf("length = %d runes, want 120", n)
	}
}

func TestValidateOutputDir(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "file.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{"valid", tmp, false},
		{"empty", " ", true},
		{"missing", filepath.Join(tmp, "missing"), true},
		{"traversal", "/tmp/../etc", true},
		{"unclean", tmp + "/./", true},
		{"not a directory", filePath, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputDir(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputDir(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOutputDir) {
				t.Errorf("error %v does not wrap ErrInvalidOutputDir", err)
			}
		})
	}
}
