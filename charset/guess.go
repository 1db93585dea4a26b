package charset

import (
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// DecodeBytes converts bytes from the given encoding to UTF-8.
// Returns the original bytes if the encoding is already UTF-8/ASCII/ISO-8859-1
// or if conversion fails.
func DecodeBytes(data []byte, encoding string) string {
	switch encoding {
	case "Shift_JIS", "SJIS":
		decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
		if err == nil {
			return string(decoded)
		}
		return string(data)
	case "GB18030", "GB2312", "GBK", "EUC_CN":
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), data)
		if err == nil {
			return string(decoded)
		}
		return string(data)
	default:
		return string(data)
	}
}

// GuessEncoding attempts to guess the encoding of a byte sequence.
// Returns characterSet unchanged when it is non-empty; otherwise one of
// "UTF-16" (byte-order mark), "UTF-8", "Shift_JIS" or "ISO-8859-1", with
// "UTF-8" as the fallback.
func GuessEncoding(bytes []byte, characterSet string) string {
	if characterSet != "" {
		return characterSet
	}

	// First try UTF-16 BOM
	if len(bytes) > 2 &&
		((bytes[0] == 0xFE && bytes[1] == 0xFF) ||
			(bytes[0] == 0xFF && bytes[1] == 0xFE)) {
		return "UTF-16"
	}

	utf8bom := len(bytes) > 3 && bytes[0] == 0xEF && bytes[1] == 0xBB && bytes[2] == 0xBF

	var utf8, sjis, iso encodingCandidate
	isoTracker := &isoCandidate{alive: true}
	utf8Tracker := &utf8Candidate{alive: true}
	sjisTracker := &sjisCandidate{alive: true}
	for i := 0; i < len(bytes) && (isoTracker.alive || sjisTracker.alive || utf8Tracker.alive); i++ {
		value := int(bytes[i]) & 0xFF
		if utf8Tracker.alive {
			utf8Tracker.observe(value)
		}
		if isoTracker.alive {
			isoTracker.observe(value)
		}
		if sjisTracker.alive {
			sjisTracker.observe(value)
		}
	}
	utf8, iso, sjis = utf8Tracker.finish(), isoTracker.finish(), sjisTracker.finish()

	switch {
	case utf8.alive && (utf8bom || utf8Tracker.multiByteChars() > 0):
		return "UTF-8"
	case sjis.alive && sjisTracker.hasLongWord():
		return "Shift_JIS"
	case iso.alive && sjis.alive:
		if sjisTracker.looksLikeKatakanaPair() || isoTracker.looksHighOtherHeavy(len(bytes)) {
			return "Shift_JIS"
		}
		return "ISO-8859-1"
	case iso.alive:
		return "ISO-8859-1"
	case sjis.alive:
		return "Shift_JIS"
	case utf8.alive:
		return "UTF-8"
	default:
		return "UTF-8" // fallback
	}
}

// encodingCandidate is the outcome of feeding a byte stream to one of the
// per-encoding trackers below: whether the stream is still consistent with
// that encoding once every byte (and any trailing partial sequence) has
// been accounted for.
type encodingCandidate struct {
	alive bool
}

// utf8Candidate tracks whether a byte stream is well-formed UTF-8,
// counting how many 2/3/4-byte sequences it contains.
type utf8Candidate struct {
	alive             bool
	bytesLeft         int
	twoByteChars      int
	threeByteChars    int
	fourByteChars     int
}

func (c *utf8Candidate) observe(value int) {
	switch {
	case c.bytesLeft > 0:
		if value&0x80 == 0 {
			c.alive = false
		} else {
			c.bytesLeft--
		}
	case value&0x80 != 0:
		if value&0x40 == 0 {
			c.alive = false
			return
		}
		c.bytesLeft++
		switch {
		case value&0x20 == 0:
			c.twoByteChars++
		case value&0x10 == 0:
			c.bytesLeft++
			c.threeByteChars++
		case value&0x08 == 0:
			c.bytesLeft += 2
			c.fourByteChars++
		default:
			c.alive = false
		}
	}
}

func (c *utf8Candidate) multiByteChars() int {
	return c.twoByteChars + c.threeByteChars + c.fourByteChars
}

func (c *utf8Candidate) finish() encodingCandidate {
	return encodingCandidate{alive: c.alive && c.bytesLeft == 0}
}

// isoCandidate tracks whether a byte stream is consistent with ISO-8859-1:
// bytes in [0x80, 0x9F] are C1 control codes no text uses, so their
// presence rules the encoding out; isoHighOther counts bytes in the upper
// range that aren't letters, used as a tie-breaker against Shift_JIS.
type isoCandidate struct {
	alive        bool
	isoHighOther int
}

func (c *isoCandidate) observe(value int) {
	switch {
	case value > 0x7F && value < 0xA0:
		c.alive = false
	case value > 0x9F && (value < 0xC0 || value == 0xD7 || value == 0xF7):
		c.isoHighOther++
	}
}

func (c *isoCandidate) looksHighOtherHeavy(length int) bool {
	return c.isoHighOther*10 >= length
}

func (c *isoCandidate) finish() encodingCandidate {
	return encodingCandidate{alive: c.alive}
}

// sjisCandidate tracks whether a byte stream is consistent with Shift_JIS,
// and the longest run of katakana or double-byte characters seen — a long
// run is strong evidence for Shift_JIS over a coincidentally-valid
// ISO-8859-1 reading of the same bytes.
type sjisCandidate struct {
	alive                     bool
	bytesLeft                 int
	katakanaChars             int
	curKatakanaWordLength     int
	curDoubleByteWordLength   int
	maxKatakanaWordLength     int
	maxDoubleByteWordLength   int
}

func (c *sjisCandidate) observe(value int) {
	switch {
	case c.bytesLeft > 0:
		if value < 0x40 || value == 0x7F || value > 0xFC {
			c.alive = false
		} else {
			c.bytesLeft--
		}
	case value == 0x80 || value == 0xA0 || value > 0xEF:
		c.alive = false
	case value > 0xA0 && value < 0xE0:
		c.katakanaChars++
		c.curDoubleByteWordLength = 0
		c.curKatakanaWordLength++
		if c.curKatakanaWordLength > c.maxKatakanaWordLength {
			c.maxKatakanaWordLength = c.curKatakanaWordLength
		}
	case value > 0x7F:
		c.bytesLeft++
		c.curKatakanaWordLength = 0
		c.curDoubleByteWordLength++
		if c.curDoubleByteWordLength > c.maxDoubleByteWordLength {
			c.maxDoubleByteWordLength = c.curDoubleByteWordLength
		}
	default:
		c.curKatakanaWordLength = 0
		c.curDoubleByteWordLength = 0
	}
}

func (c *sjisCandidate) hasLongWord() bool {
	return c.maxKatakanaWordLength >= 3 || c.maxDoubleByteWordLength >= 3
}

func (c *sjisCandidate) looksLikeKatakanaPair() bool {
	return c.maxKatakanaWordLength == 2 && c.katakanaChars == 2
}

func (c *sjisCandidate) finish() encodingCandidate {
	return encodingCandidate{alive: c.alive && c.bytesLeft == 0}
}
