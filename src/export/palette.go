package export

import (
	"image"
	"image/color"
)

//basePalette is the bare ground followed by the first three growth levels
var basePalette = color.Palette{
	color.RGBA{R: 255, G: 255, B: 255, A: 255},
	color.RGBA{R: 0x6C, G: 0x87, B: 0x6D, A: 255},
	color.RGBA{R: 0x1C, G: 0x3D, B: 0x1E, A: 255},
	color.RGBA{R: 0x03, G: 0x1A, B: 0x04, A: 255},
}

//Palette returns a palette with one color per height for heights 0..maxHeight
//levels beyond the base palette fade from the darkest green towards black
func Palette(maxHeight int) color.Palette {
	levels := maxHeight + 1
	if levels < len(basePalette) {
		levels = len(basePalette)
	}
	if levels > 256 {
		levels = 256
	}
	p := make(color.Palette, levels)
	copy(p, basePalette)
	last := basePalette[len(basePalette)-1].(color.RGBA)
	extra := levels - len(basePalette)
	for i := 0; i < extra; i++ {
		k := float64(extra-i-1) / float64(extra)
		p[len(basePalette)+i] = color.RGBA{
			R: uint8(float64(last.R) * k),
			G: uint8(float64(last.G) * k),
			B: uint8(float64(last.B) * k),
			A: 255,
		}
	}
	return p
}

//paletted wraps the frame pixels into an image of side x side
func paletted(side int, pixels []byte, p color.Palette) (*image.Paletted, error) {
	if len(pixels) != side*side {
		return nil, ErrFrameSize
	}
	img := image.NewPaletted(image.Rect(0, 0, side, side), p)
	copy(img.Pix, pixels)
	//heights above the palette are drawn with its darkest color
	top := uint8(len(p) - 1)
	for i, v := range img.Pix {
		if v > top {
			img.Pix[i] = top
		}
	}
	return img, nil
}
