package bitutil

import (
	"math/bits"
	"strings"
)

// BitMatrix is a 2D grid of bits, backed by one packed row of uint32 words
// per scanline. x is the column, y is the row; the origin is the top-left
// corner.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	words   []uint32
}

// NewBitMatrix creates a new square BitMatrix with the given dimension.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize creates a new BitMatrix with the given width and height.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitmatrix: dimensions must be greater than 0")
	}
	rowSize := wordsPerRow(width)
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		words:   make([]uint32, rowSize*height),
	}
}

func newBitMatrixFromWords(width, height, rowSize int, words []uint32) *BitMatrix {
	return &BitMatrix{width: width, height: height, rowSize: rowSize, words: words}
}

func wordsPerRow(width int) int { return (width + 31) / 32 }

// cellOffset returns the index into words holding bit (x, y), and the bit's
// offset within that word.
func cellOffset(rowSize, x, y int) (word int, offset uint) {
	return y*rowSize + x/32, uint(x & 0x1f)
}

// ParseBoolMatrix creates a BitMatrix from a 2D boolean array.
func ParseBoolMatrix(image [][]bool) *BitMatrix {
	height := len(image)
	width := len(image[0])
	bm := NewBitMatrixWithSize(width, height)
	for y, row := range image {
		for x, v := range row {
			if v {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

// ParseStringMatrix creates a BitMatrix from a string representation, where
// each row is a run of setStr/unsetStr tokens terminated by a newline.
func ParseStringMatrix(repr, setStr, unsetStr string) *BitMatrix {
	bitValues := make([]bool, len(repr))
	n := 0          // bits parsed so far
	rowStart := 0   // index into bitValues where the current row began
	rowLength := -1 // bits per row, fixed by the first row seen
	rows := 0

	closeRow := func() {
		if n == rowStart {
			return
		}
		if rowLength == -1 {
			rowLength = n - rowStart
		} else if n-rowStart != rowLength {
			panic("bitmatrix: row lengths do not match")
		}
		rowStart = n
		rows++
	}

	for pos := 0; pos < len(repr); {
		switch {
		case repr[pos] == '\n' || repr[pos] == '\r':
			closeRow()
			pos++
		case strings.HasPrefix(repr[pos:], setStr):
			bitValues[n] = true
			n++
			pos += len(setStr)
		case strings.HasPrefix(repr[pos:], unsetStr):
			bitValues[n] = false
			n++
			pos += len(unsetStr)
		default:
			panic("bitmatrix: illegal character encountered")
		}
	}
	closeRow()

	matrix := NewBitMatrixWithSize(rowLength, rows)
	for i := 0; i < n; i++ {
		if bitValues[i] {
			matrix.Set(i%rowLength, i/rowLength)
		}
	}
	return matrix
}

// Get returns true if the bit at (x, y) is set.
func (bm *BitMatrix) Get(x, y int) bool {
	w, off := cellOffset(bm.rowSize, x, y)
	return (bm.words[w]>>off)&1 != 0
}

// Set sets the bit at (x, y).
func (bm *BitMatrix) Set(x, y int) {
	w, off := cellOffset(bm.rowSize, x, y)
	bm.words[w] |= 1 << off
}

// Unset clears the bit at (x, y).
func (bm *BitMatrix) Unset(x, y int) {
	w, off := cellOffset(bm.rowSize, x, y)
	bm.words[w] &^= 1 << off
}

// Flip toggles the bit at (x, y).
func (bm *BitMatrix) Flip(x, y int) {
	w, off := cellOffset(bm.rowSize, x, y)
	bm.words[w] ^= 1 << off
}

// FlipAll toggles every bit in the matrix.
func (bm *BitMatrix) FlipAll() {
	for i := range bm.words {
		bm.words[i] = ^bm.words[i]
	}
}

// Xor toggles every bit in bm where mask has a bit set; bm and mask must
// share the same dimensions.
func (bm *BitMatrix) Xor(mask *BitMatrix) {
	if bm.width != mask.width || bm.height != mask.height || bm.rowSize != mask.rowSize {
		panic("bitmatrix: dimensions do not match")
	}
	scratch := NewBitArray(bm.width)
	for y := 0; y < bm.height; y++ {
		rowOffset := y * bm.rowSize
		maskRow := mask.Row(y, scratch).BitData()
		for x := 0; x < bm.rowSize; x++ {
			bm.words[rowOffset+x] ^= maskRow[x]
		}
	}
}

// Clear unsets every bit.
func (bm *BitMatrix) Clear() {
	for i := range bm.words {
		bm.words[i] = 0
	}
}

// SetRegion sets every bit in the rectangle [left, left+width) x [top, top+height).
func (bm *BitMatrix) SetRegion(left, top, width, height int) {
	if top < 0 || left < 0 {
		panic("bitmatrix: left and top must be nonnegative")
	}
	if height < 1 || width < 1 {
		panic("bitmatrix: height and width must be at least 1")
	}
	right, bottom := left+width, top+height
	if bottom > bm.height || right > bm.width {
		panic("bitmatrix: region must fit inside the matrix")
	}
	for y := top; y < bottom; y++ {
		rowOffset := y * bm.rowSize
		for x := left; x < right; x++ {
			bm.words[rowOffset+x/32] |= 1 << uint(x&0x1f)
		}
	}
}

// Row copies row y into a BitArray, reusing row if it's non-nil and already
// wide enough.
func (bm *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < bm.width {
		row = NewBitArray(bm.width)
	} else {
		row.Clear()
	}
	rowOffset := y * bm.rowSize
	for x := 0; x < bm.rowSize; x++ {
		row.SetBulk(x*32, bm.words[rowOffset+x])
	}
	return row
}

// SetRow overwrites row y with the contents of row.
func (bm *BitMatrix) SetRow(y int, row *BitArray) {
	copy(bm.words[y*bm.rowSize:], row.BitData()[:bm.rowSize])
}

// Rotate rotates the matrix counterclockwise by degrees, which must be a
// multiple of 90.
func (bm *BitMatrix) Rotate(degrees int) {
	switch degrees % 360 {
	case 0:
	case 90:
		bm.Rotate90()
	case 180:
		bm.Rotate180()
	case 270:
		bm.Rotate90()
		bm.Rotate180()
	default:
		panic("bitmatrix: degrees must be a multiple of 90")
	}
}

// Rotate180 rotates the matrix 180 degrees in place, by swapping
// bit-reversed row pairs from the outside in.
func (bm *BitMatrix) Rotate180() {
	top := NewBitArray(bm.width)
	bottom := NewBitArray(bm.width)
	for i, j := 0, bm.height-1; i <= j; i, j = i+1, j-1 {
		top = bm.Row(i, top)
		bottom = bm.Row(j, bottom)
		top.Reverse()
		bottom.Reverse()
		bm.SetRow(i, bottom)
		bm.SetRow(j, top)
	}
}

// Rotate90 rotates the matrix 90 degrees counterclockwise, replacing its
// storage with a freshly sized buffer for the transposed dimensions.
func (bm *BitMatrix) Rotate90() {
	newWidth, newHeight := bm.height, bm.width
	newRowSize := wordsPerRow(newWidth)
	newWords := make([]uint32, newRowSize*newHeight)

	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			w, off := cellOffset(bm.rowSize, x, y)
			if (bm.words[w]>>off)&1 == 0 {
				continue
			}
			nw, noff := cellOffset(newRowSize, y, newHeight-1-x)
			newWords[nw] |= 1 << noff
		}
	}
	bm.width, bm.height, bm.rowSize, bm.words = newWidth, newHeight, newRowSize, newWords
}

// EnclosingRectangle returns [left, top, width, height] bounding every set
// bit, or nil if the matrix is entirely clear.
func (bm *BitMatrix) EnclosingRectangle() []int {
	left, top := bm.width, bm.height
	right, bottom := -1, -1

	for y := 0; y < bm.height; y++ {
		for wx := 0; wx < bm.rowSize; wx++ {
			word := bm.words[y*bm.rowSize+wx]
			if word == 0 {
				continue
			}
			if y < top {
				top = y
			}
			if y > bottom {
				bottom = y
			}
			if lo := wx*32 + bits.TrailingZeros32(word); lo < left {
				left = lo
			}
			if hi := wx*32 + 31 - bits.LeadingZeros32(word); hi > right {
				right = hi
			}
		}
	}

	if right < left || bottom < top {
		return nil
	}
	return []int{left, top, right - left + 1, bottom - top + 1}
}

// TopLeftOnBit returns the [x, y] of the first set bit in scan order
// (row-major, low bit first), or nil if none are set.
func (bm *BitMatrix) TopLeftOnBit() []int {
	i := 0
	for i < len(bm.words) && bm.words[i] == 0 {
		i++
	}
	if i == len(bm.words) {
		return nil
	}
	y, x := i/bm.rowSize, (i%bm.rowSize)*32
	return []int{x + bits.TrailingZeros32(bm.words[i]), y}
}

// BottomRightOnBit returns the [x, y] of the last set bit in scan order, or
// nil if none are set.
func (bm *BitMatrix) BottomRightOnBit() []int {
	i := len(bm.words) - 1
	for i >= 0 && bm.words[i] == 0 {
		i--
	}
	if i < 0 {
		return nil
	}
	y, x := i/bm.rowSize, (i%bm.rowSize)*32
	return []int{x + 31 - bits.LeadingZeros32(bm.words[i]), y}
}

// Width returns the width.
func (bm *BitMatrix) Width() int { return bm.width }

// Height returns the height.
func (bm *BitMatrix) Height() int { return bm.height }

// RowSize returns the row size in uint32 words.
func (bm *BitMatrix) RowSize() int { return bm.rowSize }

// Clone returns an independent copy of bm.
func (bm *BitMatrix) Clone() *BitMatrix {
	words := make([]uint32, len(bm.words))
	copy(words, bm.words)
	return newBitMatrixFromWords(bm.width, bm.height, bm.rowSize, words)
}

// String renders the matrix using "X " for set bits and "  " for unset.
func (bm *BitMatrix) String() string {
	return bm.StringWithChars("X ", "  ")
}

// StringWithChars renders the matrix using the given set/unset tokens.
func (bm *BitMatrix) StringWithChars(setString, unsetString string) string {
	var sb strings.Builder
	sb.Grow(bm.height * (bm.width + 1))
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				sb.WriteString(setString)
			} else {
				sb.WriteString(unsetString)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Equals reports whether bm and other have the same dimensions and bits.
func (bm *BitMatrix) Equals(other *BitMatrix) bool {
	if bm.width != other.width || bm.height != other.height || bm.rowSize != other.rowSize {
		return false
	}
	for i := range bm.words {
		if bm.words[i] != other.words[i] {
			return false
		}
	}
	return true
}
