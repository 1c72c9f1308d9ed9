package romloader

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode/v2"
)

func fromZIP(path string) (Image, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		img, ok, err := openMember(f.Name, f.Open)
		if err != nil || ok {
			return img, err
		}
	}
	return Image{}, ErrNoImage
}

func from7z(path string) (Image, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		img, ok, err := openMember(f.Name, f.Open)
		if err != nil || ok {
			return img, err
		}
	}
	return Image{}, ErrNoImage
}

func openMember(name string, open func() (io.ReadCloser, error)) (Image, bool, error) {
	rc, err := open()
	if err != nil {
		return Image{}, false, fmt.Errorf("failed to open %s in archive: %w", name, err)
	}
	defer rc.Close()
	return member(name, rc)
}

func fromRAR(path string) (Image, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	for {
		h, err := r.Next()
		if err == io.EOF {
			return Image{}, ErrNoImage
		}
		if err != nil {
			return Image{}, fmt.Errorf("failed to read rar entry: %w", err)
		}
		if h.IsDir {
			continue
		}
		img, ok, err := member(h.Name, r)
		if err != nil || ok {
			return img, err
		}
	}
}

func fromGzip(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open gzip: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return Image{}, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	return fromStream(path, gr)
}

func fromZstd(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open zstd: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return Image{}, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	return fromStream(path, zr)
}

// fromStream handles a decompressed single-file stream: either a tar
// archive or the image itself, named after the file minus its
// compression suffix.
func fromStream(path string, r io.Reader) (Image, error) {
	if isTarName(path) {
		return fromTar(r)
	}

	data, err := readLimited(r)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decompress: %w", err)
	}

	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return Image{Data: data, Name: name}, nil
}

func fromTar(r io.Reader) (Image, error) {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return Image{}, ErrNoImage
		}
		if err != nil {
			return Image{}, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if h.Typeflag != tar.TypeReg {
			continue
		}
		img, ok, err := member(h.Name, tr)
		if err != nil || ok {
			return img, err
		}
	}
}
