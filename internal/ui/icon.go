package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

var iconBytes = renderIcon()

// renderIcon draws a small film strip: a dark frame with sprocket holes
// along both edges.
func renderIcon() []byte {
	const size = 22
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	body := color.NRGBA{R: 0x2b, G: 0x2f, B: 0x3a, A: 0xff}
	hole := color.NRGBA{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff}

	for y := 2; y < size-2; y++ {
		for x := 3; x < size-3; x++ {
			img.Set(x, y, body)
		}
	}
	for y := 4; y < size-4; y += 4 {
		for _, x := range []int{4, size - 6} {
			img.Set(x, y, hole)
			img.Set(x+1, y, hole)
			img.Set(x, y+1, hole)
			img.Set(x+1, y+1, hole)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
