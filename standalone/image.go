package standalone

import (
	"fmt"
	"log"

	"github.com/user-none/nesplay/cartridge"
	"github.com/user-none/nesplay/romloader"
)

// LoadImage reads a program image from disk or an archive and checks its
// header.
func LoadImage(path string) (romloader.Image, error) {
	img, err := romloader.Load(path)
	if err != nil {
		return romloader.Image{}, fmt.Errorf("failed to load image: %w", err)
	}
	if err := cartridge.CheckHeader(img.Data); err != nil {
		return romloader.Image{}, fmt.Errorf("%s: %w", img.Name, err)
	}

	if h, err := cartridge.Parse(img.Data); err == nil {
		log.Printf("image: %s (%s, %s)", img.Name, img.Format, h)
		if want := h.ExpectedSize(); want != len(img.Data) {
			log.Printf("Warning: %s is %d bytes, header describes %d", img.Name, len(img.Data), want)
		}
	}
	return img, nil
}
