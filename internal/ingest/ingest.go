// Package ingest turns raw files into frames, keeping only supported images.
package ingest

import (
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/framereel/framereel-agent/internal/editor"
)

// MaxFileBytes bounds a single source image.
const MaxFileBytes = 32 << 20

var supportedName = regexp.MustCompile(`(?i)\.(png|jpe?g|webp)$`)

// File is a raw input before filtering.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Result lists accepted frames in input order and counts the rest.
type Result struct {
	Items   []*editor.FrameItem
	Skipped int
}

// IsImageFile reports whether a file with this name and MIME type is
// accepted as a frame: an image/* type and a png, jpg, jpeg or webp name.
func IsImageFile(name, mime string) bool {
	return strings.HasPrefix(mime, "image/") && supportedName.MatchString(name)
}

// Filter keeps supported images. A missing MIME type is sniffed from the
// content.
func Filter(files []File) Result {
	var res Result
	for _, f := range files {
		mime := f.MIME
		if mime == "" || mime == "application/octet-stream" {
			mime = sniff(f.Data)
		}
		if len(f.Data) == 0 || len(f.Data) > MaxFileBytes || !IsImageFile(f.Name, mime) {
			res.Skipped++
			continue
		}
		res.Items = append(res.Items, editor.NewFrameItem(f.Name, mime, f.Data))
	}
	return res
}

func sniff(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// FromDir reads the regular files directly inside dir. Subdirectories and
// hidden files are ignored and not counted as skipped.
func FromDir(dir string) (Result, error) {
	var files []File
	skipped := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == dir {
				return nil
			}
			return filepath.SkipDir
		}
		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > MaxFileBytes {
			skipped++
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", d.Name(), err)
		}
		files = append(files, File{Name: d.Name(), Data: data})
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	res := Filter(files)
	res.Skipped += skipped
	return res, nil
}

// FromMultipart reads every file under field in a parsed multipart form.
func FromMultipart(form *multipart.Form, field string) (Result, error) {
	if form == nil {
		return Result{}, nil
	}
	headers := form.File[field]
	files := make([]File, 0, len(headers))
	skipped := 0
	for _, fh := range headers {
		if fh.Size > MaxFileBytes {
			skipped++
			continue
		}
		data, err := readPart(fh)
		if err != nil {
			return Result{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		files = append(files, File{
			Name: filepath.Base(fh.Filename),
			MIME: fh.Header.Get("Content-Type"),
			Data: data,
		})
	}

	res := Filter(files)
	res.Skipped += skipped
	return res, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, MaxFileBytes+1))
}
