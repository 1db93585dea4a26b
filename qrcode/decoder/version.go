package decoder

import (
	"fmt"
	"math/bits"

	"github.com/cdellis/barscan/bitutil"
)

// ECB represents a single error-correction block specification.
type ECB struct {
	Count         int
	DataCodewords int
}

// ECBlocks represents a set of error-correction blocks for one EC level.
type ECBlocks struct {
	ECCodewordsPerBlock int
	Blocks              []ECB
}

// NumBlocks returns the total number of blocks.
func (ecb *ECBlocks) NumBlocks() int {
	total := 0
	for _, b := range ecb.Blocks {
		total += b.Count
	}
	return total
}

// TotalECCodewords returns the total number of error-correction codewords.
func (ecb *ECBlocks) TotalECCodewords() int {
	return ecb.ECCodewordsPerBlock * ecb.NumBlocks()
}

// Version represents a QR code version (1-40).
type Version struct {
	Number                  int
	AlignmentPatternCenters []int
	ECBlocksArray           [4]ECBlocks // L, M, Q, H
	TotalCodewords          int
}

// DimensionForVersion returns the module dimension for this version.
func (v *Version) DimensionForVersion() int {
	return 17 + 4*v.Number
}

// ECBlocksForLevel returns the ECBlocks for the given error correction level.
func (v *Version) ECBlocksForLevel(ecLevel ErrorCorrectionLevel) *ECBlocks {
	return &v.ECBlocksArray[ecLevel.Ordinal()]
}

// BuildFunctionPattern marks every module reserved for finder/separator,
// alignment, timing, and (for version 7+) version-info patterns, so the
// decoder knows which modules are data-carrying versus fixed structure.
func (v *Version) BuildFunctionPattern() *bitutil.BitMatrix {
	dimension := v.DimensionForVersion()
	bm := bitutil.NewBitMatrix(dimension)

	bm.SetRegion(0, 0, 9, 9)           // top-left finder + separator + format
	bm.SetRegion(dimension-8, 0, 8, 9) // top-right finder + separator + format
	bm.SetRegion(0, dimension-8, 9, 8) // bottom-left finder + separator + format

	// Alignment patterns occupy every (row, col) combination of
	// AlignmentPatternCenters except the three corners already covered by a
	// finder pattern.
	centers := v.AlignmentPatternCenters
	n := len(centers)
	for col := 0; col < n; col++ {
		top := centers[col] - 2
		for row := 0; row < n; row++ {
			nearTopLeft := col == 0 && (row == 0 || row == n-1)
			nearBottomLeft := col == n-1 && row == 0
			if nearTopLeft || nearBottomLeft {
				continue
			}
			bm.SetRegion(centers[row]-2, top, 5, 5)
		}
	}

	bm.SetRegion(6, 9, 1, dimension-17) // vertical timing pattern
	bm.SetRegion(9, 6, dimension-17, 1) // horizontal timing pattern

	if v.Number > 6 {
		bm.SetRegion(dimension-11, 0, 3, 6) // version info, top-right
		bm.SetRegion(0, dimension-11, 6, 3) // version info, bottom-left
	}

	return bm
}

// versionHammingCodes holds the 18-bit, (18,6) Golay-encoded version number
// for each version from 7 through 40, in order. Two symbols printed in the
// corners of a version-7+ QR code redundantly carry one of these codes, so a
// scan can recover the version even from a noisy read.
var versionHammingCodes = []int{
	0x07C94, 0x085BC, 0x09A99, 0x0A4D3, 0x0BBF6,
	0x0C762, 0x0D847, 0x0E60D, 0x0F928, 0x10B78,
	0x1145D, 0x12A17, 0x13532, 0x149A6, 0x15683,
	0x168C9, 0x177EC, 0x18EC4, 0x191E1, 0x1AFAB,
	0x1B08E, 0x1CC1A, 0x1D33F, 0x1ED75, 0x1F250,
	0x209D5, 0x216F0, 0x228BA, 0x2379F, 0x24B0B,
	0x2542E, 0x26A64, 0x27541, 0x28C69,
}

// GetVersionForNumber returns the Version for the given version number (1-40).
func GetVersionForNumber(number int) (*Version, error) {
	if number < 1 || number > 40 {
		return nil, errInvalidVersion
	}
	return &versions[number-1], nil
}

// GetProvisionalVersionForDimension returns the Version for a QR code of the given dimension.
func GetProvisionalVersionForDimension(dimension int) (*Version, error) {
	if dimension%4 != 1 {
		return nil, fmt.Errorf("qrcode/decoder: invalid dimension %d", dimension)
	}
	return GetVersionForNumber((dimension - 17) / 4)
}

// DecodeVersionInformation recovers the Version matching a raw 18-bit
// version-information read, tolerating up to 3 bit errors by finding the
// table entry with the smallest Hamming distance to versionBits.
func DecodeVersionInformation(versionBits int) *Version {
	const maxCorrectableBits = 3
	bestDistance := 32
	bestIndex := -1
	for i, code := range versionHammingCodes {
		if code == versionBits {
			return &versions[i+6]
		}
		if distance := bits.OnesCount(uint(versionBits ^ code)); distance < bestDistance {
			bestDistance = distance
			bestIndex = i
		}
	}
	if bestIndex < 0 || bestDistance > maxCorrectableBits {
		return nil
	}
	return &versions[bestIndex+6]
}

// newVersion assembles a Version, deriving TotalCodewords from the L-level
// block layout: every error correction level encodes the same number of
// codewords per symbol, just split differently between data and EC.
func newVersion(number int, align []int, l, m, q, h ECBlocks) Version {
	v := Version{
		Number:                  number,
		AlignmentPatternCenters: align,
		ECBlocksArray:           [4]ECBlocks{l, m, q, h},
	}
	for _, block := range l.Blocks {
		v.TotalCodewords += block.Count * (block.DataCodewords + l.ECCodewordsPerBlock)
	}
	return v
}

// ecBlockSet builds an ECBlocks: ecCodewordsPerBlock shared EC codewords
// across one or more groups of identically-sized blocks.
func ecBlockSet(ecCodewordsPerBlock int, groups ...ECB) ECBlocks {
	return ECBlocks{ECCodewordsPerBlock: ecCodewordsPerBlock, Blocks: groups}
}

// ecBlockGroup describes count blocks that each hold dataCodewords data
// codewords.
func ecBlockGroup(count, dataCodewords int) ECB {
	return ECB{Count: count, DataCodewords: dataCodewords}
}

// versions contains all 40 QR code versions.
var versions = [40]Version{
	newVersion(1, nil, ecBlockSet(7, ecBlockGroup(1, 19)), ecBlockSet(10, ecBlockGroup(1, 16)), ecBlockSet(13, ecBlockGroup(1, 13)), ecBlockSet(17, ecBlockGroup(1, 9))),
	newVersion(2, []int{6, 18}, ecBlockSet(10, ecBlockGroup(1, 34)), ecBlockSet(16, ecBlockGroup(1, 28)), ecBlockSet(22, ecBlockGroup(1, 22)), ecBlockSet(28, ecBlockGroup(1, 16))),
	newVersion(3, []int{6, 22}, ecBlockSet(15, ecBlockGroup(1, 55)), ecBlockSet(26, ecBlockGroup(1, 44)), ecBlockSet(18, ecBlockGroup(2, 17)), ecBlockSet(22, ecBlockGroup(2, 13))),
	newVersion(4, []int{6, 26}, ecBlockSet(20, ecBlockGroup(1, 80)), ecBlockSet(18, ecBlockGroup(2, 32)), ecBlockSet(26, ecBlockGroup(2, 24)), ecBlockSet(16, ecBlockGroup(4, 9))),
	newVersion(5, []int{6, 30}, ecBlockSet(26, ecBlockGroup(1, 108)), ecBlockSet(24, ecBlockGroup(2, 43)), ecBlockSet(18, ecBlockGroup(2, 15), ecBlockGroup(2, 16)), ecBlockSet(22, ecBlockGroup(2, 11), ecBlockGroup(2, 12))),
	newVersion(6, []int{6, 34}, ecBlockSet(18, ecBlockGroup(2, 68)), ecBlockSet(16, ecBlockGroup(4, 27)), ecBlockSet(24, ecBlockGroup(4, 19)), ecBlockSet(28, ecBlockGroup(4, 15))),
	newVersion(7, []int{6, 22, 38}, ecBlockSet(20, ecBlockGroup(2, 78)), ecBlockSet(18, ecBlockGroup(4, 31)), ecBlockSet(18, ecBlockGroup(2, 14), ecBlockGroup(4, 15)), ecBlockSet(26, ecBlockGroup(4, 13), ecBlockGroup(1, 14))),
	newVersion(8, []int{6, 24, 42}, ecBlockSet(24, ecBlockGroup(2, 97)), ecBlockSet(22, ecBlockGroup(2, 38), ecBlockGroup(2, 39)), ecBlockSet(22, ecBlockGroup(4, 18), ecBlockGroup(2, 19)), ecBlockSet(26, ecBlockGroup(4, 14), ecBlockGroup(2, 15))),
	newVersion(9, []int{6, 26, 46}, ecBlockSet(30, ecBlockGroup(2, 116)), ecBlockSet(22, ecBlockGroup(3, 36), ecBlockGroup(2, 37)), ecBlockSet(20, ecBlockGroup(4, 16), ecBlockGroup(4, 17)), ecBlockSet(24, ecBlockGroup(4, 12), ecBlockGroup(4, 13))),
	newVersion(10, []int{6, 28, 50}, ecBlockSet(18, ecBlockGroup(2, 68), ecBlockGroup(2, 69)), ecBlockSet(26, ecBlockGroup(4, 43), ecBlockGroup(1, 44)), ecBlockSet(24, ecBlockGroup(6, 19), ecBlockGroup(2, 20)), ecBlockSet(28, ecBlockGroup(6, 15), ecBlockGroup(2, 16))),
	newVersion(11, []int{6, 30, 54}, ecBlockSet(20, ecBlockGroup(4, 81)), ecBlockSet(30, ecBlockGroup(1, 50), ecBlockGroup(4, 51)), ecBlockSet(28, ecBlockGroup(4, 22), ecBlockGroup(4, 23)), ecBlockSet(24, ecBlockGroup(3, 12), ecBlockGroup(8, 13))),
	newVersion(12, []int{6, 32, 58}, ecBlockSet(24, ecBlockGroup(2, 92), ecBlockGroup(2, 93)), ecBlockSet(22, ecBlockGroup(6, 36), ecBlockGroup(2, 37)), ecBlockSet(26, ecBlockGroup(4, 20), ecBlockGroup(6, 21)), ecBlockSet(28, ecBlockGroup(7, 14), ecBlockGroup(4, 15))),
	newVersion(13, []int{6, 34, 62}, ecBlockSet(26, ecBlockGroup(4, 107)), ecBlockSet(22, ecBlockGroup(8, 37), ecBlockGroup(1, 38)), ecBlockSet(24, ecBlockGroup(8, 20), ecBlockGroup(4, 21)), ecBlockSet(22, ecBlockGroup(12, 11), ecBlockGroup(4, 12))),
	newVersion(14, []int{6, 26, 46, 66}, ecBlockSet(30, ecBlockGroup(3, 115), ecBlockGroup(1, 116)), ecBlockSet(24, ecBlockGroup(4, 40), ecBlockGroup(5, 41)), ecBlockSet(20, ecBlockGroup(11, 16), ecBlockGroup(5, 17)), ecBlockSet(24, ecBlockGroup(11, 12), ecBlockGroup(5, 13))),
	newVersion(15, []int{6, 26, 48, 70}, ecBlockSet(22, ecBlockGroup(5, 87), ecBlockGroup(1, 88)), ecBlockSet(24, ecBlockGroup(5, 41), ecBlockGroup(5, 42)), ecBlockSet(30, ecBlockGroup(5, 24), ecBlockGroup(7, 25)), ecBlockSet(24, ecBlockGroup(11, 12), ecBlockGroup(7, 13))),
	newVersion(16, []int{6, 26, 50, 74}, ecBlockSet(24, ecBlockGroup(5, 98), ecBlockGroup(1, 99)), ecBlockSet(28, ecBlockGroup(7, 45), ecBlockGroup(3, 46)), ecBlockSet(24, ecBlockGroup(15, 19), ecBlockGroup(2, 20)), ecBlockSet(30, ecBlockGroup(3, 15), ecBlockGroup(13, 16))),
	newVersion(17, []int{6, 30, 54, 78}, ecBlockSet(28, ecBlockGroup(1, 107), ecBlockGroup(5, 108)), ecBlockSet(28, ecBlockGroup(10, 46), ecBlockGroup(1, 47)), ecBlockSet(28, ecBlockGroup(1, 22), ecBlockGroup(15, 23)), ecBlockSet(28, ecBlockGroup(2, 14), ecBlockGroup(17, 15))),
	newVersion(18, []int{6, 30, 56, 82}, ecBlockSet(30, ecBlockGroup(5, 120), ecBlockGroup(1, 121)), ecBlockSet(26, ecBlockGroup(9, 43), ecBlockGroup(4, 44)), ecBlockSet(28, ecBlockGroup(17, 22), ecBlockGroup(1, 23)), ecBlockSet(28, ecBlockGroup(2, 14), ecBlockGroup(19, 15))),
	newVersion(19, []int{6, 30, 58, 86}, ecBlockSet(28, ecBlockGroup(3, 113), ecBlockGroup(4, 114)), ecBlockSet(26, ecBlockGroup(3, 44), ecBlockGroup(11, 45)), ecBlockSet(26, ecBlockGroup(17, 21), ecBlockGroup(4, 22)), ecBlockSet(26, ecBlockGroup(9, 13), ecBlockGroup(16, 14))),
	newVersion(20, []int{6, 34, 62, 90}, ecBlockSet(28, ecBlockGroup(3, 107), ecBlockGroup(5, 108)), ecBlockSet(26, ecBlockGroup(3, 41), ecBlockGroup(13, 42)), ecBlockSet(30, ecBlockGroup(15, 24), ecBlockGroup(5, 25)), ecBlockSet(28, ecBlockGroup(15, 15), ecBlockGroup(10, 16))),
	newVersion(21, []int{6, 28, 50, 72, 94}, ecBlockSet(28, ecBlockGroup(4, 116), ecBlockGroup(4, 117)), ecBlockSet(26, ecBlockGroup(17, 42)), ecBlockSet(28, ecBlockGroup(17, 22), ecBlockGroup(6, 23)), ecBlockSet(30, ecBlockGroup(19, 16), ecBlockGroup(6, 17))),
	newVersion(22, []int{6, 26, 50, 74, 98}, ecBlockSet(28, ecBlockGroup(2, 111), ecBlockGroup(7, 112)), ecBlockSet(28, ecBlockGroup(17, 46)), ecBlockSet(30, ecBlockGroup(7, 24), ecBlockGroup(16, 25)), ecBlockSet(24, ecBlockGroup(34, 13))),
	newVersion(23, []int{6, 30, 54, 78, 102}, ecBlockSet(30, ecBlockGroup(4, 121), ecBlockGroup(5, 122)), ecBlockSet(28, ecBlockGroup(4, 47), ecBlockGroup(14, 48)), ecBlockSet(30, ecBlockGroup(11, 24), ecBlockGroup(14, 25)), ecBlockSet(30, ecBlockGroup(16, 15), ecBlockGroup(14, 16))),
	newVersion(24, []int{6, 28, 54, 80, 106}, ecBlockSet(30, ecBlockGroup(6, 117), ecBlockGroup(4, 118)), ecBlockSet(28, ecBlockGroup(6, 45), ecBlockGroup(14, 46)), ecBlockSet(30, ecBlockGroup(11, 24), ecBlockGroup(16, 25)), ecBlockSet(30, ecBlockGroup(30, 16), ecBlockGroup(2, 17))),
	newVersion(25, []int{6, 32, 58, 84, 110}, ecBlockSet(26, ecBlockGroup(8, 106), ecBlockGroup(4, 107)), ecBlockSet(28, ecBlockGroup(8, 47), ecBlockGroup(13, 48)), ecBlockSet(30, ecBlockGroup(7, 24), ecBlockGroup(22, 25)), ecBlockSet(30, ecBlockGroup(22, 15), ecBlockGroup(13, 16))),
	newVersion(26, []int{6, 30, 58, 86, 114}, ecBlockSet(28, ecBlockGroup(10, 114), ecBlockGroup(2, 115)), ecBlockSet(28, ecBlockGroup(19, 46), ecBlockGroup(4, 47)), ecBlockSet(28, ecBlockGroup(28, 22), ecBlockGroup(6, 23)), ecBlockSet(30, ecBlockGroup(33, 16), ecBlockGroup(4, 17))),
	newVersion(27, []int{6, 34, 62, 90, 118}, ecBlockSet(30, ecBlockGroup(8, 122), ecBlockGroup(4, 123)), ecBlockSet(28, ecBlockGroup(22, 45), ecBlockGroup(3, 46)), ecBlockSet(30, ecBlockGroup(8, 23), ecBlockGroup(26, 24)), ecBlockSet(30, ecBlockGroup(12, 15), ecBlockGroup(28, 16))),
	newVersion(28, []int{6, 26, 50, 74, 98, 122}, ecBlockSet(30, ecBlockGroup(3, 117), ecBlockGroup(10, 118)), ecBlockSet(28, ecBlockGroup(3, 45), ecBlockGroup(23, 46)), ecBlockSet(30, ecBlockGroup(4, 24), ecBlockGroup(31, 25)), ecBlockSet(30, ecBlockGroup(11, 15), ecBlockGroup(31, 16))),
	newVersion(29, []int{6, 30, 54, 78, 102, 126}, ecBlockSet(30, ecBlockGroup(7, 116), ecBlockGroup(7, 117)), ecBlockSet(28, ecBlockGroup(21, 45), ecBlockGroup(7, 46)), ecBlockSet(30, ecBlockGroup(1, 23), ecBlockGroup(37, 24)), ecBlockSet(30, ecBlockGroup(19, 15), ecBlockGroup(26, 16))),
	newVersion(30, []int{6, 26, 52, 78, 104, 130}, ecBlockSet(30, ecBlockGroup(5, 115), ecBlockGroup(10, 116)), ecBlockSet(28, ecBlockGroup(19, 47), ecBlockGroup(10, 48)), ecBlockSet(30, ecBlockGroup(15, 24), ecBlockGroup(25, 25)), ecBlockSet(30, ecBlockGroup(23, 15), ecBlockGroup(25, 16))),
	newVersion(31, []int{6, 30, 56, 82, 108, 134}, ecBlockSet(30, ecBlockGroup(13, 115), ecBlockGroup(3, 116)), ecBlockSet(28, ecBlockGroup(2, 46), ecBlockGroup(29, 47)), ecBlockSet(30, ecBlockGroup(42, 24), ecBlockGroup(1, 25)), ecBlockSet(30, ecBlockGroup(23, 15), ecBlockGroup(28, 16))),
	newVersion(32, []int{6, 34, 60, 86, 112, 138}, ecBlockSet(30, ecBlockGroup(17, 115)), ecBlockSet(28, ecBlockGroup(10, 46), ecBlockGroup(23, 47)), ecBlockSet(30, ecBlockGroup(10, 24), ecBlockGroup(35, 25)), ecBlockSet(30, ecBlockGroup(19, 15), ecBlockGroup(35, 16))),
	newVersion(33, []int{6, 30, 58, 86, 114, 142}, ecBlockSet(30, ecBlockGroup(17, 115), ecBlockGroup(1, 116)), ecBlockSet(28, ecBlockGroup(14, 46), ecBlockGroup(21, 47)), ecBlockSet(30, ecBlockGroup(29, 24), ecBlockGroup(19, 25)), ecBlockSet(30, ecBlockGroup(11, 15), ecBlockGroup(46, 16))),
	newVersion(34, []int{6, 34, 62, 90, 118, 146}, ecBlockSet(30, ecBlockGroup(13, 115), ecBlockGroup(6, 116)), ecBlockSet(28, ecBlockGroup(14, 46), ecBlockGroup(23, 47)), ecBlockSet(30, ecBlockGroup(44, 24), ecBlockGroup(7, 25)), ecBlockSet(30, ecBlockGroup(59, 16), ecBlockGroup(1, 17))),
	newVersion(35, []int{6, 30, 54, 78, 102, 126, 150}, ecBlockSet(30, ecBlockGroup(12, 121), ecBlockGroup(7, 122)), ecBlockSet(28, ecBlockGroup(12, 47), ecBlockGroup(26, 48)), ecBlockSet(30, ecBlockGroup(39, 24), ecBlockGroup(14, 25)), ecBlockSet(30, ecBlockGroup(22, 15), ecBlockGroup(41, 16))),
	newVersion(36, []int{6, 24, 50, 76, 102, 128, 154}, ecBlockSet(30, ecBlockGroup(6, 121), ecBlockGroup(14, 122)), ecBlockSet(28, ecBlockGroup(6, 47), ecBlockGroup(34, 48)), ecBlockSet(30, ecBlockGroup(46, 24), ecBlockGroup(10, 25)), ecBlockSet(30, ecBlockGroup(2, 15), ecBlockGroup(64, 16))),
	newVersion(37, []int{6, 28, 54, 80, 106, 132, 158}, ecBlockSet(30, ecBlockGroup(17, 122), ecBlockGroup(4, 123)), ecBlockSet(28, ecBlockGroup(29, 46), ecBlockGroup(14, 47)), ecBlockSet(30, ecBlockGroup(49, 24), ecBlockGroup(10, 25)), ecBlockSet(30, ecBlockGroup(24, 15), ecBlockGroup(46, 16))),
	newVersion(38, []int{6, 32, 58, 84, 110, 136, 162}, ecBlockSet(30, ecBlockGroup(4, 122), ecBlockGroup(18, 123)), ecBlockSet(28, ecBlockGroup(13, 46), ecBlockGroup(32, 47)), ecBlockSet(30, ecBlockGroup(48, 24), ecBlockGroup(14, 25)), ecBlockSet(30, ecBlockGroup(42, 15), ecBlockGroup(32, 16))),
	newVersion(39, []int{6, 26, 54, 82, 110, 138, 166}, ecBlockSet(30, ecBlockGroup(20, 117), ecBlockGroup(4, 118)), ecBlockSet(28, ecBlockGroup(40, 47), ecBlockGroup(7, 48)), ecBlockSet(30, ecBlockGroup(43, 24), ecBlockGroup(22, 25)), ecBlockSet(30, ecBlockGroup(10, 15), ecBlockGroup(67, 16))),
	newVersion(40, []int{6, 30, 58, 86, 114, 142, 170}, ecBlockSet(30, ecBlockGroup(19, 118), ecBlockGroup(6, 119)), ecBlockSet(28, ecBlockGroup(18, 47), ecBlockGroup(31, 48)), ecBlockSet(30, ecBlockGroup(34, 24), ecBlockGroup(34, 25)), ecBlockSet(30, ecBlockGroup(20, 15), ecBlockGroup(61, 16))),
}
