package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cdellis/barscan"
	"github.com/cdellis/barscan/binarizer"
	"github.com/cdellis/barscan/rasterio"

	// Register all format readers.
	_ "github.com/cdellis/barscan/aztec"
	_ "github.com/cdellis/barscan/datamatrix"
	_ "github.com/cdellis/barscan/maxicode"
	_ "github.com/cdellis/barscan/oned"
	_ "github.com/cdellis/barscan/pdf417"
	_ "github.com/cdellis/barscan/qrcode"
)

func main() {
	tryHarder := flag.Bool("try-harder", false, "spend more time looking for barcodes")
	pure := flag.Bool("pure", false, "hint that the image is a clean barcode render with minimal border")
	encode := flag.String("encode", "", "instead of scanning, encode this text into a barcode")
	encodeFormat := flag.String("encode-format", "qrcode", "barcode format to use with -encode")
	encodeOut := flag.String("encode-out", "", "output image path for -encode (.png, .jpg, .webp); required with -encode")
	moduleSize := flag.Int("module-size", 4, "pixels per module for -encode output")
	quietZone := flag.Int("quiet-zone", 4, "quiet zone width in modules for -encode output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: barcodescan [flags] <image-file> [image-file...]\n\n")
		fmt.Fprintf(os.Stderr, "Detect and decode barcodes in image files (PNG, JPEG, GIF, WebP).\n")
		fmt.Fprintf(os.Stderr, "With -encode, render a barcode to an image file instead.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *encode != "" {
		if *encodeOut == "" {
			fmt.Fprintln(os.Stderr, "error: -encode-out is required with -encode")
			os.Exit(1)
		}
		if err := encodeFile(*encode, *encodeFormat, *encodeOut, *moduleSize, *quietZone); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	exitCode := 0
	for _, path := range flag.Args() {
		results, err := scanFile(path, *tryHarder, *pure)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", path, err)
			exitCode = 1
			continue
		}
		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "%s: no barcodes found\n", path)
			exitCode = 1
			continue
		}
		for _, r := range results {
			if flag.NArg() > 1 {
				fmt.Printf("%s: ", path)
			}
			fmt.Printf("[%s] %s\n", r.Format, r.Text)
		}
	}
	os.Exit(exitCode)
}

func encodeFile(contents, formatName, outPath string, moduleSize, quietZone int) error {
	format, ok := formatByName[formatName]
	if !ok {
		return fmt.Errorf("unknown format %q", formatName)
	}
	matrix, err := barscan.Encode(contents, format, 0, 0, nil)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return rasterio.SaveMatrix(outPath, matrix, moduleSize, quietZone)
}

var formatByName = map[string]barscan.Format{
	"qrcode":  barscan.FormatQRCode,
	"pdf417":  barscan.FormatPDF417,
	"code128": barscan.FormatCode128,
	"code39":  barscan.FormatCode39,
	"code93":  barscan.FormatCode93,
	"ean13":   barscan.FormatEAN13,
	"ean8":    barscan.FormatEAN8,
	"upca":    barscan.FormatUPCA,
	"upce":    barscan.FormatUPCE,
	"itf":     barscan.FormatITF,
	"codabar": barscan.FormatCodabar,
}

// allFormats lists every format to attempt.
var allFormats = []barscan.Format{
	barscan.FormatQRCode,
	barscan.FormatPDF417,
	barscan.FormatCode128,
	barscan.FormatCode39,
	barscan.FormatCode93,
	barscan.FormatEAN13,
	barscan.FormatEAN8,
	barscan.FormatUPCA,
	barscan.FormatUPCE,
	barscan.FormatITF,
	barscan.FormatCodabar,
	barscan.FormatRSS14,
	barscan.FormatRSSExpanded,
	barscan.FormatDataMatrix,
	barscan.FormatAztec,
	barscan.FormatMaxiCode,
}

func scanFile(path string, tryHarder, pure bool) ([]*barscan.Result, error) {
	source, err := rasterio.LoadLuminanceSource(path)
	if err != nil {
		return nil, err
	}

	opts := &barscan.DecodeOptions{
		TryHarder:   tryHarder,
		PureBarcode: pure,
	}

	// Try every format with the GlobalHistogram binarizer (fast, works well
	// for clean images) and then again with the Hybrid binarizer (local
	// adaptive thresholding, better for photographs with uneven lighting).
	// Both passes always run; a format/text pair found twice is reported once.
	bitmaps := []*barscan.BinaryBitmap{
		barscan.NewBinaryBitmap(binarizer.NewGlobalHistogram(source)),
		barscan.NewBinaryBitmap(binarizer.NewHybrid(source)),
	}

	var results []*barscan.Result
	seen := map[string]bool{}

	for _, bitmap := range bitmaps {
		for _, format := range allFormats {
			formatOpts := *opts
			formatOpts.PossibleFormats = []barscan.Format{format}

			result, err := tryDecode(bitmap, &formatOpts)
			if err != nil {
				continue
			}
			key := fmt.Sprintf("%s:%s", result.Format, result.Text)
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, result)
		}
	}

	return results, nil
}

// tryDecode calls barscan.Decode but recovers from panics that decoders may
// raise on malformed input, converting them to errors.
func tryDecode(bitmap *barscan.BinaryBitmap, opts *barscan.DecodeOptions) (result *barscan.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return barscan.Decode(bitmap, opts)
}
