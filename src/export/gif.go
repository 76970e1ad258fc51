package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
)

var ErrFrameSize = errors.New("frame size does not match the grid")

const (
	//DefFrameDelay is the delay between animation frames, in hundredths of a second
	DefFrameDelay = 33
	//MaxGIFMemory bounds the frames a GIFWriter should hold before encoding
	MaxGIFMemory = 256 << 20
)

//GIFMemory returns the bytes a GIFWriter holds for frames frames of side x side
func GIFMemory(side int, frames int) int64 {
	return int64(side) * int64(side) * int64(frames)
}

//GIFWriter collects the frames of a run into an animated GIF written on Close
//image/gif has no streaming encoder, so every frame stays in memory until then
type GIFWriter struct {
	path    string
	side    int
	palette color.Palette
	delay   int
	anim    gif.GIF
}

func NewGIFWriter(path string, side int, palette color.Palette, delay int) *GIFWriter {
	return &GIFWriter{path: path, side: side, palette: palette, delay: delay}
}

//WriteFrame appends the frame, the first one is shown without delay
func (w *GIFWriter) WriteFrame(generation int, pixels []byte) error {
	img, err := paletted(w.side, pixels, w.palette)
	if err != nil {
		return fmt.Errorf("gif frame %d: %w", generation, err)
	}
	delay := w.delay
	if len(w.anim.Image) == 0 {
		delay = 0
	}
	w.anim.Image = append(w.anim.Image, img)
	w.anim.Delay = append(w.anim.Delay, delay)
	return nil
}

//Close encodes the collected frames into the file
func (w *GIFWriter) Close() (err error) {
	if len(w.anim.Image) == 0 {
		return nil
	}
	w.anim.Config = image.Config{ColorModel: w.palette, Width: w.side, Height: w.side}
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = gif.EncodeAll(f, &w.anim); err != nil {
		return fmt.Errorf("encode %s: %w", w.path, err)
	}
	return nil
}

//Path returns the file the animation is written to
func (w *GIFWriter) Path() string { return w.path }
