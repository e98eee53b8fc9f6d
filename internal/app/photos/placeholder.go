package photos

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/foodswipe/foodswipe-edge/internal/ports/out/photofetch"
)

const placeholderSize = 64

var placeholderPNG = sync.OnceValue(func() []byte {
	img := image.NewGray(image.Rect(0, 0, placeholderSize, placeholderSize))
	fill := color.Gray{Y: 0xf3}
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			img.SetGray(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
})

// Placeholder is the image rendered when a photo cannot be loaded.
func Placeholder() photofetch.Photo {
	return photofetch.Photo{
		ContentType: "image/png",
		Data:        placeholderPNG(),
	}
}
