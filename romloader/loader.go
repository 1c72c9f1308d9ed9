// Package romloader reads program images from plain files and from
// compressed archives (ZIP, 7z, RAR, gzip, tar.gz, zstd, tar.zst).
//
// Archives are searched for the first member that looks like an image:
// either its name carries an image extension or its contents start with
// the header magic.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user-none/nesplay/cartridge"
)

// Extensions lists the file extensions treated as program images.
var Extensions = []string{".nes"}

// MaxImageSize caps how much is read from any file or archive member.
const MaxImageSize = 8 * 1024 * 1024

var (
	// ErrNoImage is returned when an archive holds no program image.
	ErrNoImage = errors.New("no program image found in archive")

	// ErrUnsupportedFormat is returned for files that are neither a known
	// archive nor an image.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrTooLarge is returned when a file or member exceeds MaxImageSize.
	ErrTooLarge = errors.New("file exceeds maximum image size")
)

// Image is a loaded program image.
type Image struct {
	Data []byte

	// Name is the base name of the file or archive member it came from.
	Name string

	// Format names the container it was extracted from ("raw" for plain
	// files).
	Format string
}

type format struct {
	name  string
	magic []byte
	exts  []string
	open  func(path string) (Image, error)
}

var formats = []format{
	{"zip", []byte{0x50, 0x4B, 0x03, 0x04}, []string{".zip"}, fromZIP},
	{"zip", []byte{0x50, 0x4B, 0x05, 0x06}, nil, fromZIP},
	{"7z", []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, []string{".7z"}, from7z},
	{"rar", []byte("Rar!"), []string{".rar"}, fromRAR},
	{"zstd", []byte{0x28, 0xB5, 0x2F, 0xFD}, []string{".zst", ".tzst"}, fromZstd},
	{"gzip", []byte{0x1F, 0x8B}, []string{".gz", ".tgz"}, fromGzip},
}

// Load reads an image from path, extracting it from an archive if needed.
func Load(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Image{}, fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	if fm := detect(header, path); fm != nil {
		img, err := fm.open(path)
		if err != nil {
			return Image{}, err
		}
		img.Format = fm.name
		return img, nil
	}

	if !isImageName(path) && cartridge.CheckHeader(header) != nil {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Image{}, fmt.Errorf("failed to seek file: %w", err)
	}
	data, err := readLimited(f)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	return Image{Data: data, Name: filepath.Base(path), Format: "raw"}, nil
}

// detect picks the archive format by magic bytes first, then by extension.
func detect(header []byte, path string) *format {
	for i := range formats {
		if bytes.HasPrefix(header, formats[i].magic) {
			return &formats[i]
		}
	}

	lower := strings.ToLower(path)
	for i := range formats {
		for _, ext := range formats[i].exts {
			if strings.HasSuffix(lower, ext) {
				return &formats[i]
			}
		}
	}
	return nil
}

func isImageName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// isTarName reports whether a compressed file name wraps a tar stream.
func isTarName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range []string{".tar.gz", ".tgz", ".tar.zst", ".tzst"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// member reads one archive entry and keeps it if its name or contents mark
// it as an image.
func member(name string, r io.Reader) (Image, bool, error) {
	data, err := readLimited(r)
	if err != nil {
		return Image{}, false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !isImageName(name) && cartridge.CheckHeader(data) != nil {
		return Image{}, false, nil
	}
	return Image{Data: data, Name: filepath.Base(name)}, true, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
