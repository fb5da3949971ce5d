// Package encoder turns a timed frame sequence into an animated GIF.
package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	_ "golang.org/x/image/webp"

	"github.com/framereel/framereel-agent/internal/editor"
)

// ErrAborted is returned when the encode context ends before the last frame.
var ErrAborted = errors.New("encode aborted")

// ErrNoFrames is returned for an empty request.
var ErrNoFrames = errors.New("no frames to encode")

// FrameError reports a frame that could not be decoded. It aborts the
// whole encode.
type FrameError struct {
	Index int
	Name  string
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

type Request struct {
	Frames     []editor.TimedFrame
	Background Background
}

// Artifact is a finished animation. Width and Height come from the first
// frame; later frames are drawn at the origin and cropped to it.
type Artifact struct {
	Data           []byte
	Width          int
	Height         int
	FrameCount     int
	AverageDelayMs int
}

// ProgressFunc is called after each frame with the number done so far.
type ProgressFunc func(done, total int)

type Encoder interface {
	Encode(ctx context.Context, req Request, progress ProgressFunc) (*Artifact, error)
}

// GIFEncoder encodes with a fixed web-safe palette and no dithering. The
// animation loops forever.
type GIFEncoder struct {
	logger *slog.Logger
}

func NewGIFEncoder(logger *slog.Logger) *GIFEncoder {
	return &GIFEncoder{logger: logger}
}

func (e *GIFEncoder) Encode(ctx context.Context, req Request, progress ProgressFunc) (*Artifact, error) {
	total := len(req.Frames)
	if total == 0 {
		return nil, ErrNoFrames
	}

	first, err := decodeFrame(req.Frames[0], 0)
	if err != nil {
		return nil, err
	}
	bounds := image.Rect(0, 0, first.Bounds().Dx(), first.Bounds().Dy())
	pal := buildPalette(req.Background)

	anim := &gif.GIF{
		Image:    make([]*image.Paletted, 0, total),
		Delay:    make([]int, 0, total),
		Disposal: make([]byte, 0, total),
		Config: image.Config{
			ColorModel: pal,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		},
		LoopCount: 0,
	}
	if req.Background.Transparent {
		anim.BackgroundIndex = 0
	}

	var delaySum int
	for i, frame := range req.Frames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAborted, err)
		}

		img := first
		if i > 0 {
			if img, err = decodeFrame(frame, i); err != nil {
				return nil, err
			}
		}

		anim.Image = append(anim.Image, compose(img, bounds, req.Background, pal))
		anim.Delay = append(anim.Delay, centiseconds(frame.DurationMs))
		anim.Disposal = append(anim.Disposal, disposal(req.Background))
		delaySum += frame.DurationMs

		if progress != nil {
			progress(i+1, total)
		}
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("write gif: %w", err)
	}

	if e.logger != nil {
		e.logger.Debug("gif encoded",
			"frames", total,
			"width", bounds.Dx(),
			"height", bounds.Dy(),
			"bytes", buf.Len(),
			"background", req.Background.String())
	}

	return &Artifact{
		Data:           buf.Bytes(),
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		FrameCount:     total,
		AverageDelayMs: (delaySum + total/2) / total,
	}, nil
}

func decodeFrame(f editor.TimedFrame, index int) (image.Image, error) {
	name := ""
	if f.Item != nil {
		name = f.Item.Name
	}
	if f.Item == nil || len(f.Item.Data) == 0 {
		return nil, &FrameError{Index: index, Name: name, Err: errors.New("empty image data")}
	}
	img, _, err := image.Decode(bytes.NewReader(f.Item.Data))
	if err != nil {
		return nil, &FrameError{Index: index, Name: name, Err: err}
	}
	return img, nil
}

// buildPalette reserves index 0 for full transparency when the background
// is transparent.
func buildPalette(bg Background) color.Palette {
	if !bg.Transparent {
		return palette.Plan9
	}
	pal := make(color.Palette, 0, 256)
	pal = append(pal, color.RGBA{})
	return append(pal, palette.Plan9[:255]...)
}

func compose(img image.Image, bounds image.Rectangle, bg Background, pal color.Palette) *image.Paletted {
	canvas := image.NewRGBA(bounds)
	if !bg.Transparent {
		draw.Draw(canvas, bounds, image.NewUniform(bg.Color), image.Point{}, draw.Src)
	}
	draw.Draw(canvas, bounds, img, img.Bounds().Min, draw.Over)

	out := image.NewPaletted(bounds, pal)
	draw.Draw(out, bounds, canvas, image.Point{}, draw.Src)
	return out
}

func disposal(bg Background) byte {
	if bg.Transparent {
		return gif.DisposalBackground
	}
	return gif.DisposalNone
}

// centiseconds converts a duration to GIF delay units, rounding to nearest.
func centiseconds(ms int) int {
	return (ms + 5) / 10
}
