// Package rasterio is the thin raster-image I/O glue the core barcode
// pipeline deliberately omits: loading a file into a barscan.LuminanceSource
// and rendering a bitutil.BitMatrix back out to a raster file. PNG, JPEG,
// and GIF decode through the standard library's image registry; WebP
// registers itself into that same registry on import, so image.Decode
// picks it up with no separate code path.
package rasterio

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepteams/webp"

	"github.com/cdellis/barscan"
	"github.com/cdellis/barscan/bitutil"
)

// LoadLuminanceSource opens an image file (PNG, JPEG, GIF, or WebP) and
// returns it as a barscan.LuminanceSource ready for binarization.
func LoadLuminanceSource(path string) (*barscan.ImageLuminanceSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rasterio: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("rasterio: decode %s: %w", path, err)
	}
	return barscan.NewImageLuminanceSource(img), nil
}

// SaveMatrix renders a BitMatrix to a raster file at path. The output
// format is chosen from the file extension (.png, .jpg/.jpeg, .webp);
// anything else defaults to PNG. quietZone adds quietZone modules of white
// border on each side before scaling by moduleSize pixels per module.
func SaveMatrix(path string, matrix *bitutil.BitMatrix, moduleSize, quietZone int) error {
	img := renderMatrix(matrix, moduleSize, quietZone)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rasterio: create %s: %w", path, err)
	}
	defer f.Close()

	return encodeByExtension(f, path, img)
}

func renderMatrix(matrix *bitutil.BitMatrix, moduleSize, quietZone int) *image.Gray {
	if moduleSize < 1 {
		moduleSize = 1
	}
	if quietZone < 0 {
		quietZone = 0
	}
	w := matrix.Width()
	h := matrix.Height()
	outW := (w + 2*quietZone) * moduleSize
	outH := (h + 2*quietZone) * moduleSize

	img := image.NewGray(image.Rect(0, 0, outW, outH))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !matrix.Get(x, y) {
				continue
			}
			px0 := (x + quietZone) * moduleSize
			py0 := (y + quietZone) * moduleSize
			for py := py0; py < py0+moduleSize; py++ {
				rowStart := py*img.Stride + px0
				for i := 0; i < moduleSize; i++ {
					img.Pix[rowStart+i] = 0x00
				}
			}
		}
	}
	return img
}

func encodeByExtension(w io.Writer, path string, img image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".webp":
		return webp.Encode(w, img, webp.DefaultOptions())
	default:
		return png.Encode(w, img)
	}
}
