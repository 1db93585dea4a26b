package pdf417

import (
	"fmt"
	"math"

	"github.com/cdellis/barscan"
	"github.com/cdellis/barscan/pdf417/decoder"
	"github.com/cdellis/barscan/pdf417/detector"
)

// PDF417Reader decodes PDF417 barcodes from binary images.
type PDF417Reader struct{}

// NewPDF417Reader creates a new PDF417 reader.
func NewPDF417Reader() *PDF417Reader {
	return &PDF417Reader{}
}

// Decode locates and decodes a PDF417 barcode in the given image.
func (r *PDF417Reader) Decode(image *barscan.BinaryBitmap, opts *barscan.DecodeOptions) (*barscan.Result, error) {
	results, err := r.decode(image, opts, false)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, barscan.ErrNotFound
	}
	return results[0], nil
}

// DecodeMultiple locates and decodes all PDF417 barcodes in the given image.
func (r *PDF417Reader) DecodeMultiple(image *barscan.BinaryBitmap, opts *barscan.DecodeOptions) ([]*barscan.Result, error) {
	return r.decode(image, opts, true)
}

func (r *PDF417Reader) decode(image *barscan.BinaryBitmap, opts *barscan.DecodeOptions, multiple bool) ([]*barscan.Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	detResult, err := detector.Detect(matrix, multiple, opts != nil && opts.TryHarder)
	if err != nil {
		return nil, err
	}

	var results []*barscan.Result
	for _, points := range detResult.Points {
		if len(points) < 8 {
			continue
		}
		dr, err := decoder.Decode(
			detResult.Bits,
			points[4], // imageTopLeft
			points[5], // imageBottomLeft
			points[6], // imageTopRight
			points[7], // imageBottomRight
			getMinCodewordWidth(points),
			getMaxCodewordWidth(points),
		)
		if err != nil {
			continue
		}

		result := barscan.NewResult(
			dr.Text,
			dr.RawBytes,
			[]barscan.ResultPoint{},
			barscan.FormatPDF417,
		)

		result.PutMetadata(barscan.MetadataErrorCorrectionLevel, barscan.ErrorCorrectionLevelValue(dr.ECLevel))
		result.PutMetadata(barscan.MetadataErrorsCorrected, barscan.ErrorsCorrectedValue(dr.ErrorsCorrected))
		result.PutMetadata(barscan.MetadataErasuresCorrected, barscan.ErasuresCorrectedValue(dr.Erasures))
		if dr.Other != nil {
			result.PutMetadata(barscan.MetadataPDF417ExtraMetadata, barscan.PDF417ExtraMetadataValue{Value: dr.Other})
		}
		result.PutMetadata(barscan.MetadataSymbologyIdentifier, barscan.SymbologyIdentifierValue(fmt.Sprintf("]L%d", dr.SymbologyModifier)))

		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, barscan.ErrNotFound
	}
	return results, nil
}

// Reset resets internal state.
func (r *PDF417Reader) Reset() {}

func getMinWidth(p1, p2 *barscan.ResultPoint) int {
	if p1 == nil || p2 == nil {
		return 0
	}
	return int(math.Abs(p1.X - p2.X))
}

func getMaxWidth(p1, p2 *barscan.ResultPoint) int {
	if p1 == nil || p2 == nil {
		return 0
	}
	return int(math.Abs(p1.X-p2.X)) | 1 // ensure odd
}

func getMinCodewordWidth(points []*barscan.ResultPoint) int {
	return min(
		getMinWidth(points[0], points[4]),
		getMinWidth(points[6], points[2]),
		getMinWidth(points[1], points[5]),
		getMinWidth(points[7], points[3]),
	)
}

func getMaxCodewordWidth(points []*barscan.ResultPoint) int {
	return max(
		getMaxWidth(points[0], points[4]),
		getMaxWidth(points[6], points[2]),
		getMaxWidth(points[1], points[5]),
		getMaxWidth(points[7], points[3]),
	)
}
