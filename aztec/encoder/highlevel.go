// Package encoder implements Aztec barcode encoding.
package encoder

import (
	"fmt"

	"github.com/cdellis/barscan/bitutil"
)

// Encoding modes for the Aztec high-level encoder.
const (
	modeUpper = iota
	modeLower
	modeMixed
	modeDigit
	modePunct
)

// Number of bits per code in each mode (DIGIT is 4, all others are 5).
var modeBits = [5]int{5, 5, 5, 4, 5}

// charMap maps each byte value to its code in each of the five modes.
// A value of -1 means the character cannot be encoded in that mode.
var charMap [256][5]int

func init() {
	for i := range charMap {
		for j := range charMap[i] {
			charMap[i][j] = -1
		}
	}

	// UPPER (5 bits per code):
	//   0 = FLG(n), 1 = SP, 2..27 = A..Z, 28 = LL, 29 = ML, 30 = DL, 31 = BS
	charMap[' '][modeUpper] = 1
	for c := byte('A'); c <= 'Z'; c++ {
		charMap[c][modeUpper] = int(c-'A') + 2
	}

	// LOWER (5 bits per code):
	//   0 = FLG(n), 1 = SP, 2..27 = a..z, 28 = AS, 29 = ML, 30 = DL, 31 = BS
	charMap[' '][modeLower] = 1
	for c := byte('a'); c <= 'z'; c++ {
		charMap[c][modeLower] = int(c-'a') + 2
	}

	// MIXED (5 bits per code):
	//   0 = FLG(n), 1 = SP, 2..14 = ctrl \x01..\x0D,
	//   15 = \x1B (ESC), 16..19 = \x1C..\x1F (FS/GS/RS/US),
	//   20 = @, 21 = \, 22 = ^, 23 = _, 24 = `, 25 = |, 26 = ~, 27 = \x7F (DEL),
	//   28 = PL, 29 = UL, 30 = (reserved), 31 = BS
	charMap[' '][modeMixed] = 1
	for c := byte(1); c <= 13; c++ {
		charMap[c][modeMixed] = int(c) + 1 // codes 2..14
	}
	charMap[0x1B][modeMixed] = 15
	charMap[0x1C][modeMixed] = 16
	charMap[0x1D][modeMixed] = 17
	charMap[0x1E][modeMixed] = 18
	charMap[0x1F][modeMixed] = 19
	charMap['@'][modeMixed] = 20
	charMap['\\'][modeMixed] = 21
	charMap['^'][modeMixed] = 22
	charMap['_'][modeMixed] = 23
	charMap['`'][modeMixed] = 24
	charMap['|'][modeMixed] = 25
	charMap['~'][modeMixed] = 26
	charMap[0x7F][modeMixed] = 27

	// DIGIT (4 bits per code):
	//   0 = FLG(n), 1 = SP, 2..11 = '0'..'9', 12 = ',', 13 = '.', 14 = UL, 15 = AS
	charMap[' '][modeDigit] = 1
	for c := byte('0'); c <= '9'; c++ {
		charMap[c][modeDigit] = int(c-'0') + 2
	}
	charMap[','][modeDigit] = 12
	charMap['.'][modeDigit] = 13

	// PUNCT (5 bits per code):
	//   0 = FLG(n),
	//   1 = \r, 2 = \r\n, 3 = ". ", 4 = ", ", 5 = ": ",
	//   6..29 = ! " # $ % & ' ( ) * + , - . / : ; < = > ? [ ] {
	//   30 = }, 31 = UL
	charMap['\r'][modePunct] = 1
	// Codes 2..5 are two-char sequences, handled separately in punctPairs.
	singlePunct := []byte{
		'!', '"', '#', '$', '%', '&', '\'', '(', ')', '*', '+', ',',
		'-', '.', '/', ':', ';', '<', '=', '>', '?', '[', ']', '{',
	}
	for idx, c := range singlePunct {
		charMap[c][modePunct] = idx + 6
	}
	charMap['}'][modePunct] = 30
}

// punctPairs maps two-character sequences to their PUNCT mode codes.
var punctPairs = map[[2]byte]int{
	{'\r', '\n'}: 2,
	{'.', ' '}:   3,
	{',', ' '}:   4,
	{':', ' '}:   5,
}

// modeSwitch describes one step of a latch/shift sequence: emit the given
// code using the bit width of intermediateMode.
type modeSwitch struct {
	intermediateMode int
	code             int
}

// getLatchSequence returns the sequence of codes to latch from one mode to
// another. Each entry specifies the current mode and the code to emit.
func getLatchSequence(from, to int) []modeSwitch {
	if from == to {
		return nil
	}
	switch from {
	case modeUpper:
		switch to {
		case modeLower:
			return []modeSwitch{{modeUpper, 28}} // LL
		case modeMixed:
			return []modeSwitch{{modeUpper, 29}} // ML
		case modeDigit:
			return []modeSwitch{{modeUpper, 30}} // DL
		case modePunct:
			return []modeSwitch{{modeUpper, 29}, {modeMixed, 28}} // ML, PL
		}
	case modeLower:
		switch to {
		case modeUpper:
			return []modeSwitch{{modeLower, 29}, {modeMixed, 29}} // ML, UL
		case modeMixed:
			return []modeSwitch{{modeLower, 29}} // ML
		case modeDigit:
			return []modeSwitch{{modeLower, 30}} // DL
		case modePunct:
			return []modeSwitch{{modeLower, 29}, {modeMixed, 28}} // ML, PL
		}
	case modeMixed:
		switch to {
		case modeUpper:
			return []modeSwitch{{modeMixed, 29}} // UL
		case modeLower:
			return []modeSwitch{{modeMixed, 29}, {modeUpper, 28}} // UL, LL
		case modeDigit:
			return []modeSwitch{{modeMixed, 29}, {modeUpper, 30}} // UL, DL
		case modePunct:
			return []modeSwitch{{modeMixed, 28}} // PL
		}
	case modeDigit:
		switch to {
		case modeUpper:
			return []modeSwitch{{modeDigit, 14}} // UL
		case modeLower:
			return []modeSwitch{{modeDigit, 14}, {modeUpper, 28}} // UL, LL
		case modeMixed:
			return []modeSwitch{{modeDigit, 14}, {modeUpper, 29}} // UL, ML
		case modePunct:
			return []modeSwitch{{modeDigit, 14}, {modeUpper, 29}, {modeMixed, 28}} // UL, ML, PL
		}
	case modePunct:
		switch to {
		case modeUpper:
			return []modeSwitch{{modePunct, 31}} // UL
		case modeLower:
			return []modeSwitch{{modePunct, 31}, {modeUpper, 28}} // UL, LL
		case modeMixed:
			return []modeSwitch{{modePunct, 31}, {modeUpper, 29}} // UL, ML
		case modeDigit:
			return []modeSwitch{{modePunct, 31}, {modeUpper, 30}} // UL, DL
		}
	}
	return nil
}

// latchCost returns the number of bits consumed by getLatchSequence(from, to).
func latchCost(from, to int) int {
	cost := 0
	for _, sw := range getLatchSequence(from, to) {
		cost += modeBits[sw.intermediateMode]
	}
	return cost
}

// canShift reports whether a single-character shift from cur to target is
// defined. Aztec shifts to UPPER only, from LOWER (code 28, "AS") and from
// DIGIT (code 15, "AS"); every other mode change requires a latch.
func canShift(cur, target int) bool {
	if target != modeUpper {
		return false
	}
	return cur == modeLower || cur == modeDigit
}

func shiftCode(cur int) int {
	if cur == modeDigit {
		return 15
	}
	return 28
}

// tokenKind distinguishes a fixed-width mode code from a run of raw bytes
// emitted via Binary Shift.
type tokenKind int

const (
	tokenCode tokenKind = iota
	tokenBinaryShift
)

// token is one node of a persistent, singly linked output list: each state
// shares the tail its predecessor states already committed to, and only the
// newest node is ever allocated. A finished encode walks prev back to the
// root and replays the chain in forward order into a BitArray.
type token struct {
	prev  *token
	kind  tokenKind
	value int // tokenCode: the bits to emit
	bits  int // tokenCode: width of value
	start int // tokenBinaryShift: index of first raw byte
	count int // tokenBinaryShift: number of raw bytes
}

func (t *token) add(value, bits int) *token {
	return &token{prev: t, kind: tokenCode, value: value, bits: bits}
}

func (t *token) addBinaryShift(start, count int) *token {
	return &token{prev: t, kind: tokenBinaryShift, start: start, count: count}
}

// appendTo writes this token's bits to out. Binary Shift always fires with
// its mode already latched to UPPER, LOWER, or MIXED (state.addBinaryShiftChar
// latches out of DIGIT/PUNCT first), so the BS marker is always 5 bits wide.
func (t *token) appendTo(out *bitutil.BitArray, data []byte) {
	switch t.kind {
	case tokenCode:
		out.AppendBits(uint32(t.value), t.bits)
	case tokenBinaryShift:
		out.AppendBits(31, 5)
		if t.count <= 31 {
			out.AppendBits(uint32(t.count), 5)
		} else {
			out.AppendBits(0, 5)
			out.AppendBits(uint32(t.count-31), 11)
		}
		for i := 0; i < t.count; i++ {
			out.AppendBits(uint32(data[t.start+i]), 8)
		}
	}
}

// state is one candidate partial encoding: the mode the encoder would be in
// if it stopped here, the token chain built so far, and the running bit
// count including the estimated cost of any in-progress Binary Shift run.
// States are immutable; every transition returns a new state built on the
// same shared token tail.
type state struct {
	mode     int
	tok      *token
	binCount int // length of the in-progress (uncommitted) Binary Shift run
	bitCount int
	binCost  int // calculateBinaryShiftCost(binCount), cached
}

var initialState = state{mode: modeUpper}

// calculateBinaryShiftCost estimates the eventual fixed overhead (BS marker
// plus length field) of a Binary Shift run of the given byte count: 10 bits
// for 1 to 31 bytes (marker and 5-bit length), 20 bits for 32 to 62 bytes
// (the cost of two short runs), and 21 bits beyond 62 bytes (marker, zero
// length and 11-bit extended length). token.appendTo writes every run longer
// than 31 bytes in the extended form.
func calculateBinaryShiftCost(binaryShiftByteCount int) int {
	switch {
	case binaryShiftByteCount > 62:
		return 21
	case binaryShiftByteCount > 31:
		return 20
	case binaryShiftByteCount > 0:
		return 10
	default:
		return 0
	}
}

// latchAndAppend returns the state reached by latching (if necessary) from
// s.mode to mode and then emitting value in that mode.
func (s state) latchAndAppend(mode, value int) state {
	tok := s.tok
	bitCount := s.bitCount
	if mode != s.mode {
		for _, sw := range getLatchSequence(s.mode, mode) {
			tok = tok.add(sw.code, modeBits[sw.intermediateMode])
			bitCount += modeBits[sw.intermediateMode]
		}
	}
	tok = tok.add(value, modeBits[mode])
	bitCount += modeBits[mode]
	return state{mode: mode, tok: tok, bitCount: bitCount}
}

// shiftAndAppend returns the state reached by a temporary single-character
// shift to mode; s.mode is unchanged afterward.
func (s state) shiftAndAppend(mode, value int) state {
	tok := s.tok.add(shiftCode(s.mode), modeBits[s.mode])
	tok = tok.add(value, modeBits[mode])
	return state{mode: s.mode, tok: tok, bitCount: s.bitCount + modeBits[s.mode] + modeBits[mode]}
}

// addBinaryShiftChar returns the state reached by folding data[index] into
// an in-progress (or newly started) Binary Shift run. DIGIT and PUNCT have
// no Binary Shift code of their own, so the state first latches to UPPER.
func (s state) addBinaryShiftChar(index int) state {
	tok := s.tok
	mode := s.mode
	bitCount := s.bitCount
	if mode == modePunct || mode == modeDigit {
		for _, sw := range getLatchSequence(mode, modeUpper) {
			tok = tok.add(sw.code, modeBits[sw.intermediateMode])
			bitCount += modeBits[sw.intermediateMode]
		}
		mode = modeUpper
	}
	var delta int
	switch s.binCount {
	case 0, 31:
		delta = 18 // BS marker + length field grows
	case 62:
		delta = 9 // length field overflows into the extended form
	default:
		delta = 8 // steady-state cost of one more raw byte
	}
	result := state{mode: mode, tok: tok, binCount: s.binCount + 1, bitCount: bitCount + delta}
	result.binCost = calculateBinaryShiftCost(result.binCount)
	if result.binCount == 2047+31 {
		// The run has reached the longest length a single Binary Shift can
		// encode; close it out now so a subsequent byte starts a fresh one.
		result = result.endBinaryShift(index + 1)
	}
	return result
}

// endBinaryShift commits any in-progress Binary Shift run as a token, given
// the input index one past the run's last byte.
func (s state) endBinaryShift(index int) state {
	if s.binCount == 0 {
		return s
	}
	tok := s.tok.addBinaryShift(index-s.binCount, s.binCount)
	return state{mode: s.mode, tok: tok, bitCount: s.bitCount}
}

// isBetterThanOrEqualTo reports whether s can never be worse than other: if
// s were forced to adopt other's mode right now, would its bit count still
// be no greater? This is the dominance test that keeps the search frontier
// small — a dominated state can be dropped without ever affecting the
// optimal answer.
func (s state) isBetterThanOrEqualTo(other state) bool {
	newModeBitCount := s.bitCount + latchCost(s.mode, other.mode)
	switch {
	case s.binCount < other.binCount:
		newModeBitCount += other.binCost - s.binCost
	case s.binCount > other.binCount && other.binCount > 0:
		newModeBitCount += 10
	}
	return newModeBitCount <= other.bitCount
}

// toBitArray closes out any in-progress Binary Shift run and replays the
// token chain, which is stored newest-first, into a BitArray in input order.
func (s state) toBitArray(data []byte) *bitutil.BitArray {
	final := s.endBinaryShift(len(data))
	var chain []*token
	for t := final.tok; t != nil; t = t.prev {
		chain = append(chain, t)
	}
	out := bitutil.NewBitArray(0)
	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].appendTo(out, data)
	}
	return out
}

// pruneFrontier keeps only the Pareto-optimal candidates: a candidate is
// dropped as soon as a surviving candidate isBetterThanOrEqualTo it.
func pruneFrontier(candidates []state) []state {
	var kept []state
	for _, c := range candidates {
		dominated := false
		for _, k := range kept {
			if k.isBetterThanOrEqualTo(c) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		survivors := kept[:0:0]
		for _, k := range kept {
			if !c.isBetterThanOrEqualTo(k) {
				survivors = append(survivors, k)
			}
		}
		kept = append(survivors, c)
	}
	return kept
}

// advanceChar expands every state in the frontier by one input byte: each
// state spawns a latch candidate (and a shift candidate, where one is
// defined) for every character mode that can represent the byte directly,
// plus a Binary Shift candidate whenever the byte has no character-mode
// encoding or the state is already mid-run.
func advanceChar(frontier []state, data []byte, pos int) []state {
	b := data[pos]
	var next []state
	for _, s := range frontier {
		inCurrentMode := charMap[b][s.mode] >= 0
		closed := s.endBinaryShift(pos)
		for mode := modeUpper; mode <= modePunct; mode++ {
			code := charMap[b][mode]
			if code < 0 {
				continue
			}
			if mode == s.mode {
				next = append(next, closed.latchAndAppend(mode, code))
				continue
			}
			if canShift(s.mode, mode) {
				next = append(next, closed.shiftAndAppend(mode, code))
			}
			next = append(next, closed.latchAndAppend(mode, code))
		}
		if s.binCount > 0 || !inCurrentMode {
			next = append(next, s.addBinaryShiftChar(pos))
		}
	}
	return pruneFrontier(next)
}

// highLevelEncode encodes data bytes into a BitArray using the Aztec
// high-level encoding scheme: a dominance-pruned search over the candidate
// mode sequences (latch, shift, and Binary Shift) rather than a single
// greedy choice, so a locally worse move that unlocks a cheaper run later
// is never foreclosed.
func highLevelEncode(data []byte) (*bitutil.BitArray, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("aztec: empty input")
	}

	frontier := []state{initialState}
	i := 0
	for i < len(data) {
		if i+1 < len(data) {
			if code, ok := punctPairs[[2]byte{data[i], data[i+1]}]; ok {
				paired := make([]state, len(frontier))
				for j, s := range frontier {
					paired[j] = s.endBinaryShift(i).latchAndAppend(modePunct, code)
				}
				frontier = pruneFrontier(paired)
				i += 2
				continue
			}
		}
		frontier = advanceChar(frontier, data, i)
		i++
	}

	best := frontier[0]
	for _, s := range frontier[1:] {
		if s.bitCount < best.bitCount {
			best = s
		}
	}
	return best.toBitArray(data), nil
}
