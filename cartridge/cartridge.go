// Package cartridge inspects the 16-byte header at the front of a console
// program image. It does not decode the program or character data; that is
// the engine's job.
package cartridge

import (
	"encoding/hex"
	"fmt"

	emucore "github.com/user-none/nesplay/api"
	"github.com/zeebo/blake3"
)

// HeaderSize is the length of the image header.
const HeaderSize = 16

const (
	prgBankSize = 16 * 1024
	chrBankSize = 8 * 1024
	trainerSize = 512
)

var magic = [4]byte{'N', 'E', 'S', 0x1A}

// Mirroring is the nametable arrangement wired on the board.
type Mirroring int

const (
	Horizontal Mirroring = iota
	Vertical
	FourScreen
)

func (m Mirroring) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case FourScreen:
		return "four-screen"
	}
	return "unknown"
}

// Header is the decoded image header.
type Header struct {
	PRGBanks  int // 16 KiB units
	CHRBanks  int // 8 KiB units, 0 means CHR RAM
	Mapper    int
	Mirroring Mirroring
	Battery   bool
	Trainer   bool
	NES2      bool
}

// CheckHeader reports ErrInvalidImage unless image starts with the header
// magic.
func CheckHeader(image []byte) error {
	if len(image) < len(magic) {
		return fmt.Errorf("%w: %d bytes is too short for a header", emucore.ErrInvalidImage, len(image))
	}
	if [4]byte(image[:4]) != magic {
		return fmt.Errorf("%w: missing header magic", emucore.ErrInvalidImage)
	}
	return nil
}

// Parse decodes the header fields.
func Parse(image []byte) (Header, error) {
	if err := CheckHeader(image); err != nil {
		return Header{}, err
	}
	if len(image) < HeaderSize {
		return Header{}, fmt.Errorf("%w: truncated header", emucore.ErrInvalidImage)
	}

	flags6 := image[6]
	flags7 := image[7]

	h := Header{
		PRGBanks: int(image[4]),
		CHRBanks: int(image[5]),
		Mapper:   int(flags7&0xF0) | int(flags6>>4),
		Battery:  flags6&0x02 != 0,
		Trainer:  flags6&0x04 != 0,
		NES2:     flags7&0x0C == 0x08,
	}

	switch {
	case flags6&0x08 != 0:
		h.Mirroring = FourScreen
	case flags6&0x01 != 0:
		h.Mirroring = Vertical
	default:
		h.Mirroring = Horizontal
	}

	return h, nil
}

// ExpectedSize returns the image length the header describes.
func (h Header) ExpectedSize() int {
	n := HeaderSize + h.PRGBanks*prgBankSize + h.CHRBanks*chrBankSize
	if h.Trainer {
		n += trainerSize
	}
	return n
}

func (h Header) String() string {
	return fmt.Sprintf("mapper %d, %d KiB PRG, %d KiB CHR, %s mirroring",
		h.Mapper, h.PRGBanks*16, h.CHRBanks*8, h.Mirroring)
}

// Hash returns a hex fingerprint of the whole image, used to name
// screenshots and to tag log lines.
func Hash(image []byte) string {
	sum := blake3.Sum256(image)
	return hex.EncodeToString(sum[:])
}
