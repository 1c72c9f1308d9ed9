package standalone

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	emucore "github.com/user-none/nesplay/api"
	"golang.org/x/image/draw"
)

// frameImage wraps a framebuffer as an image without copying.
func frameImage(pixels []byte) *image.RGBA {
	return &image.RGBA{
		Pix:    pixels,
		Stride: emucore.ScreenWidth * emucore.BytesPerPixel,
		Rect:   image.Rect(0, 0, emucore.ScreenWidth, emucore.ScreenHeight),
	}
}

// ScaleFrame upscales a framebuffer by an integer factor, widening it by
// the pixel aspect ratio.
func ScaleFrame(pixels []byte, scale int, par float64) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	w := int(float64(emucore.ScreenWidth*scale)*par + 0.5)
	h := emucore.ScreenHeight * scale

	src := frameImage(pixels)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Rect, draw.Src, nil)
	return dst
}

// SaveScreenshot writes the frame as a PNG under dir/tag and returns the
// file path. Files are named by capture time in nanoseconds.
func SaveScreenshot(dir, tag string, pixels []byte, scale int, par float64) (string, error) {
	if len(pixels) < emucore.FramebufferSize {
		return "", fmt.Errorf("short framebuffer: %d bytes", len(pixels))
	}

	if tag != "" {
		dir = filepath.Join(dir, tag)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.png", time.Now().UnixNano()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, ScaleFrame(pixels, scale, par)); err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return path, nil
}
