package encoder

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/framereel/framereel-agent/internal/editor"
)

func pngFrame(t *testing.T, name string, w, h int, fill color.Color, ms int) editor.TimedFrame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return editor.TimedFrame{
		Item:       editor.NewFrameItem(name, "image/png", buf.Bytes()),
		DurationMs: ms,
	}
}

func TestGIFEncoder_Encode(t *testing.T) {
	red := color.RGBA{0xff, 0, 0, 0xff}
	req := Request{
		Frames: []editor.TimedFrame{
			pngFrame(t, "a.png", 8, 6, red, 100),
			pngFrame(t, "b.png", 12, 12, red, 250),
			pngFrame(t, "c.png", 4, 4, red, 54),
		},
		Background: Background{Color: color.RGBA{0xff, 0xff, 0xff, 0xff}},
	}

	var calls []int
	art, err := NewGIFEncoder(nil).Encode(context.Background(), req, func(done, total int) {
		if total != 3 {
			t.Errorf("progress total = %d", total)
		}
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if art.Width != 8 || art.Height != 6 || art.FrameCount != 3 {
		t.Errorf("artifact = %dx%d, %d frames", art.Width, art.Height, art.FrameCount)
	}
	if art.AverageDelayMs != 135 {
		t.Errorf("AverageDelayMs = %d, want 135", art.AverageDelayMs)
	}
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("progress calls = %v", calls)
	}

	decoded, err := gif.DecodeAll(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(decoded.Image) != 3 {
		t.Fatalf("decoded %d frames", len(decoded.Image))
	}
	wantDelays := []int{10, 25, 5}
	for i, d := range decoded.Delay {
		if d != wantDelays[i] {
			t.Errorf("delay[%d] = %d, want %d", i, d, wantDelays[i])
		}
	}
	if decoded.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0 (forever)", decoded.LoopCount)
	}
	if decoded.Config.Width != 8 || decoded.Config.Height != 6 {
		t.Errorf("config = %dx%d", decoded.Config.Width, decoded.Config.Height)
	}

	// The small third frame leaves the rest of the canvas on the background.
	r, g, b, _ := decoded.Image[2].At(7, 5).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("uncovered pixel = %x %x %x, want white", r>>8, g>>8, b>>8)
	}
}

func TestGIFEncoder_TransparentBackground(t *testing.T) {
	req := Request{
		Frames:     []editor.TimedFrame{pngFrame(t, "clear.png", 4, 4, color.RGBA{}, 100)},
		Background: TransparentBackground,
	}

	art, err := NewGIFEncoder(nil).Encode(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := gif.DecodeAll(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := decoded.Image[0].At(0, 0).RGBA(); a != 0 {
		t.Errorf("alpha = %d, want transparent", a)
	}
	if decoded.Disposal[0] != gif.DisposalBackground {
		t.Errorf("disposal = %d", decoded.Disposal[0])
	}
}

func TestGIFEncoder_FrameError(t *testing.T) {
	req := Request{
		Frames: []editor.TimedFrame{
			pngFrame(t, "ok.png", 2, 2, color.Black, 100),
			{Item: editor.NewFrameItem("broken.png", "image/png", []byte("not an image")), DurationMs: 100},
		},
	}

	_, err := NewGIFEncoder(nil).Encode(context.Background(), req, nil)
	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FrameError", err)
	}
	if fe.Index != 1 || fe.Name != "broken.png" {
		t.Errorf("FrameError = %+v", fe)
	}
}

func TestGIFEncoder_Aborted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	req := Request{
		Frames: []editor.TimedFrame{
			pngFrame(t, "a.png", 2, 2, color.Black, 100),
			pngFrame(t, "b.png", 2, 2, color.Black, 100),
		},
	}

	_, err := NewGIFEncoder(nil).Encode(ctx, req, func(done, total int) {
		cancel()
	})
	if !errors.Is(err, ErrAborted) || !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want ErrAborted wrapping context.Canceled", err)
	}
}

func TestGIFEncoder_NoFrames(t *testing.T) {
	if _, err := NewGIFEncoder(nil).Encode(context.Background(), Request{}, nil); !errors.Is(err, ErrNoFrames) {
		t.Errorf("err = %v", err)
	}
}

func TestParseBackground(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "transparent", false},
		{"Transparent", "transparent", false},
		{"white", "#ffffff", false},
		{"#FF8000", "#ff8000", false},
		{"#0f0", "#00ff00", false},
		{"ff8000", "", true},
		{"#12345", "", true},
		{"#gggggg", "", true},
	}

	for _, tt := range tests {
		bg, err := ParseBackground(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackground(%q) err = %v", tt.in, err)
			continue
		}
		if err == nil && bg.String() != tt.want {
			t.Errorf("ParseBackground(%q) = %s, want %s", tt.in, bg, tt.want)
		}
	}
}
