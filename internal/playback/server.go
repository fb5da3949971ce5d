// Package playback serves in-memory frames and animations over HTTP with
// byte-range support, so browsers can preview large GIFs progressively.
package playback

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// Blob is a body to serve. ETag, when set, must change whenever Data does.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
	ETag        string
	// Download asks the browser to save rather than display.
	Download bool
}

type PlaybackService interface {
	ServeBlob(w http.ResponseWriter, r *http.Request, blob Blob) error
}

type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	return &Server{logger: logger}
}

func (s *Server) ServeBlob(w http.ResponseWriter, r *http.Request, blob Blob) error {
	size := int64(len(blob.Data))
	contentType := blob.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(blob.Data)
	}

	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", contentType)
	if blob.ETag != "" {
		etag := strconv.Quote(blob.ETag)
		h.Set("ETag", etag)
		h.Set("Cache-Control", "private, max-age=0, must-revalidate")
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return nil
		}
	}
	if blob.Download && blob.Name != "" {
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.Name))
	}

	rng, ok, err := ParseRange(r.Header.Get("Range"), size)
	switch {
	case err == ErrUnsatisfiable:
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case err != nil && err != ErrInvalidRange:
		return err
	}

	// A malformed Range header is ignored and the whole body is sent.
	if !ok {
		h.Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, err = w.Write(blob.Data)
		}
		return err
	}

	h.Set("Content-Length", strconv.FormatInt(rng.ContentLength(), 10))
	h.Set("Content-Range", rng.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return nil
	}
	_, err = io.Copy(w, io.NewSectionReader(bytes.NewReader(blob.Data), rng.Start, rng.ContentLength()))
	return err
}
