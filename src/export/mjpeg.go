package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

//DefFrameRate is the frame rate of the video export
const DefFrameRate = 30

//MJPEGWriter streams the frames of a run into a Motion-JPEG AVI file
type MJPEGWriter struct {
	path    string
	side    int
	palette color.Palette
	aw      mjpeg.AviWriter
	buf     bytes.Buffer
}

func NewMJPEGWriter(path string, side int, palette color.Palette, fps int) (*MJPEGWriter, error) {
	if fps <= 0 {
		fps = DefFrameRate
	}
	aw, err := mjpeg.New(path, int32(side), int32(side), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &MJPEGWriter{path: path, side: side, palette: palette, aw: aw}, nil
}

func (w *MJPEGWriter) WriteFrame(generation int, pixels []byte) error {
	img, err := paletted(w.side, pixels, w.palette)
	if err != nil {
		return fmt.Errorf("video frame %d: %w", generation, err)
	}
	w.buf.Reset()
	if err := jpeg.Encode(&w.buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("video frame %d: %w", generation, err)
	}
	return w.aw.AddFrame(w.buf.Bytes())
}

func (w *MJPEGWriter) Close() error {
	return w.aw.Close()
}

func (w *MJPEGWriter) Path() string { return w.path }
