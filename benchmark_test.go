package barscan_test

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"testing"

	"github.com/cdellis/barscan"
	"github.com/cdellis/barscan/binarizer"

	_ "github.com/cdellis/barscan/aztec"
	_ "github.com/cdellis/barscan/datamatrix"
	_ "github.com/cdellis/barscan/oned"
	_ "github.com/cdellis/barscan/pdf417"
	_ "github.com/cdellis/barscan/qrcode"
)

func loadTestImage(path string) image.Image {
	f, err := os.Open(path)
	if err != nil {
		panic("failed to open image: " + err.Error())
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		panic("failed to decode image: " + err.Error())
	}
	return img
}

var decodeTests = []struct {
	name   string
	path   string
	format barscan.Format
}{
	{"QRCode", "testdata/blackbox/qrcode-1/1.png", barscan.FormatQRCode},
	{"DataMatrix", "testdata/blackbox/datamatrix-1/0123456789.png", barscan.FormatDataMatrix},
	{"PDF417", "testdata/blackbox/pdf417-1/01.png", barscan.FormatPDF417},
	{"Aztec", "testdata/blackbox/aztec-1/abc-37x37.png", barscan.FormatAztec},
	{"Code128", "testdata/blackbox/code128-1/1.png", barscan.FormatCode128},
	{"EAN13", "testdata/blackbox/ean13-1/1.png", barscan.FormatEAN13},
}

var encodeTests = []struct {
	name    string
	content string
	format  barscan.Format
	width   int
	height  int
}{
	{"QRCode", "Hello, World! This is a QR code benchmark test.", barscan.FormatQRCode, 400, 400},
	{"DataMatrix", "Hello DataMatrix", barscan.FormatDataMatrix, 0, 0},
	{"PDF417", "Hello PDF417 Benchmark Test Data", barscan.FormatPDF417, 0, 0},
	{"Aztec", "Hello Aztec Code", barscan.FormatAztec, 0, 0},
	{"Code128", "Hello123", barscan.FormatCode128, 300, 100},
	{"EAN13", "5901234123457", barscan.FormatEAN13, 300, 100},
}

func BenchmarkDecode(b *testing.B) {
	for _, tc := range decodeTests {
		b.Run(tc.name, func(b *testing.B) {
			img := loadTestImage(tc.path)
			opts := &barscan.DecodeOptions{
				PossibleFormats: []barscan.Format{tc.format},
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				// Create fresh binarizer/bitmap each iteration since HybridBinarizer caches
				source := barscan.NewImageLuminanceSource(img)
				bitmap := barscan.NewBinaryBitmap(binarizer.NewHybrid(source))
				_, err := barscan.Decode(bitmap, opts)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	for _, tc := range encodeTests {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := barscan.Encode(tc.content, tc.format, tc.width, tc.height, nil)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
