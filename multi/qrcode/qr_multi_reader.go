// Package qrcode provides multi-QR code detection and structured append support.
package qrcode

import (
	"fmt"
	"sort"

	"github.com/cdellis/barscan"
	"github.com/cdellis/barscan/qrcode/decoder"
	"github.com/cdellis/barscan/qrcode/detector"
)

// QRCodeMultiReader can detect and decode multiple QR codes in an image,
// and also combines structured append results.
type QRCodeMultiReader struct {
	dec *decoder.Decoder
}

// NewQRCodeMultiReader creates a new QRCodeMultiReader.
func NewQRCodeMultiReader() *QRCodeMultiReader {
	return &QRCodeMultiReader{dec: decoder.NewDecoder()}
}

// DecodeMultiple detects and decodes all QR codes in the image.
func (r *QRCodeMultiReader) DecodeMultiple(image *barscan.BinaryBitmap, opts *barscan.DecodeOptions) ([]*barscan.Result, error) {
	if opts == nil {
		opts = &barscan.DecodeOptions{}
	}

	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	detectorResults, err := detector.DetectMulti(matrix, opts.TryHarder)
	if err != nil {
		return nil, err
	}

	var results []*barscan.Result
	for _, detResult := range detectorResults {
		dr, err := r.dec.Decode(detResult.Bits, opts.CharacterSet)
		if err != nil {
			continue
		}

		points := make([]barscan.ResultPoint, len(detResult.Points))
		for i, p := range detResult.Points {
			points[i] = barscan.ResultPoint{X: p.X, Y: p.Y}
		}

		result := barscan.NewResult(dr.Text, dr.RawBytes, points, barscan.FormatQRCode)
		if dr.ByteSegments != nil {
			result.PutMetadata(barscan.MetadataByteSegments, barscan.ByteSegmentsValue(dr.ByteSegments))
		}
		if dr.ECLevel != "" {
			result.PutMetadata(barscan.MetadataErrorCorrectionLevel, barscan.ErrorCorrectionLevelValue(dr.ECLevel))
		}
		if dr.HasStructuredAppend() {
			result.PutMetadata(barscan.MetadataStructuredAppendSequence, barscan.StructuredAppendSequenceValue(dr.StructuredAppendSequenceNumber))
			result.PutMetadata(barscan.MetadataStructuredAppendParity, barscan.StructuredAppendParityValue(dr.StructuredAppendParity))
		}
		result.PutMetadata(barscan.MetadataErrorsCorrected, barscan.ErrorsCorrectedValue(dr.ErrorsCorrected))
		result.PutMetadata(barscan.MetadataSymbologyIdentifier, barscan.SymbologyIdentifierValue(fmt.Sprintf("]Q%d", dr.SymbologyModifier)))

		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, barscan.ErrNotFound
	}

	results = processStructuredAppend(results)
	return results, nil
}

// Decode decodes a single QR code (delegate to standard reader behavior).
func (r *QRCodeMultiReader) Decode(image *barscan.BinaryBitmap, opts *barscan.DecodeOptions) (*barscan.Result, error) {
	results, err := r.DecodeMultiple(image, opts)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Reset is a no-op.
func (r *QRCodeMultiReader) Reset() {}

func processStructuredAppend(results []*barscan.Result) []*barscan.Result {
	var newResults []*barscan.Result
	var saResults []*barscan.Result

	for _, result := range results {
		if _, ok := result.Metadata[barscan.MetadataStructuredAppendSequence]; ok {
			saResults = append(saResults, result)
		} else {
			newResults = append(newResults, result)
		}
	}

	if len(saResults) == 0 {
		return results
	}

	// Sort by sequence number
	sort.Slice(saResults, func(i, j int) bool {
		seqI, _ := saResults[i].Metadata[barscan.MetadataStructuredAppendSequence].(barscan.StructuredAppendSequenceValue)
		seqJ, _ := saResults[j].Metadata[barscan.MetadataStructuredAppendSequence].(barscan.StructuredAppendSequenceValue)
		return seqI < seqJ
	})

	// Concatenate text and raw bytes
	var combinedText string
	var combinedRawBytes []byte
	var combinedByteSegment []byte
	for _, sa := range saResults {
		combinedText += sa.Text
		if sa.RawBytes != nil {
			combinedRawBytes = append(combinedRawBytes, sa.RawBytes...)
		}
		if segs, ok := sa.Metadata[barscan.MetadataByteSegments].(barscan.ByteSegmentsValue); ok {
			for _, seg := range segs {
				combinedByteSegment = append(combinedByteSegment, seg...)
			}
		}
	}

	combined := barscan.NewResult(combinedText, combinedRawBytes, nil, barscan.FormatQRCode)
	if len(combinedByteSegment) > 0 {
		combined.PutMetadata(barscan.MetadataByteSegments, barscan.ByteSegmentsValue{combinedByteSegment})
	}
	newResults = append(newResults, combined)
	return newResults
}

// DecodeMultipleFromResults is a convenience for combining results that may
// have been decoded separately but share structured append metadata.
func DecodeMultipleFromResults(results []*barscan.Result) []*barscan.Result {
	return processStructuredAppend(results)
}

// ensure interface compliance
var _ barscan.MultipleBarcodeReader = (*QRCodeMultiReader)(nil)
var _ barscan.Reader = (*QRCodeMultiReader)(nil)
