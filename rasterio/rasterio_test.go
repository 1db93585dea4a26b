package rasterio

import (
	"path/filepath"
	"testing"

	"github.com/cdellis/barscan"
	"github.com/cdellis/barscan/binarizer"

	_ "github.com/cdellis/barscan/oned"
	_ "github.com/cdellis/barscan/qrcode"
)

func TestSaveMatrixThenLoadRoundTripsPNG(t *testing.T) {
	matrix, err := barscan.Encode("HELLO RASTERIO", barscan.FormatQRCode, 200, 200, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := SaveMatrix(path, matrix, 4, 4); err != nil {
		t.Fatalf("SaveMatrix: %v", err)
	}

	source, err := LoadLuminanceSource(path)
	if err != nil {
		t.Fatalf("LoadLuminanceSource: %v", err)
	}

	bitmap := barscan.NewBinaryBitmap(binarizer.NewGlobalHistogram(source))
	result, err := barscan.Decode(bitmap, &barscan.DecodeOptions{
		PossibleFormats: []barscan.Format{barscan.FormatQRCode},
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Text != "HELLO RASTERIO" {
		t.Errorf("Text = %q, want HELLO RASTERIO", result.Text)
	}
}

func TestSaveMatrixChoosesFormatByExtension(t *testing.T) {
	matrix, err := barscan.Encode("123456", barscan.FormatCode128, 100, 50, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dir := t.TempDir()
	for _, ext := range []string{".png", ".jpg", ".webp", ".gif"} {
		path := filepath.Join(dir, "out"+ext)
		if err := SaveMatrix(path, matrix, 2, 2); err != nil {
			t.Errorf("SaveMatrix(%s): %v", ext, err)
		}
	}
}

func TestRenderMatrixAppliesQuietZone(t *testing.T) {
	matrix, err := barscan.Encode("123456", barscan.FormatCode128, 100, 50, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	img := renderMatrix(matrix, 3, 5)
	wantW := (matrix.Width() + 10) * 3
	wantH := (matrix.Height() + 10) * 3
	bounds := img.Bounds()
	if bounds.Dx() != wantW || bounds.Dy() != wantH {
		t.Errorf("rendered size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), wantW, wantH)
	}
	// The quiet zone border must be all-white.
	for x := 0; x < bounds.Dx(); x++ {
		if img.GrayAt(x, 0).Y != 0xFF {
			t.Fatalf("quiet zone not white at (%d,0)", x)
		}
	}
}
