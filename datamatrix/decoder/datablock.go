package decoder

import "fmt"

// DataBlock represents a block of data and error-correction codewords.
type DataBlock struct {
	NumDataCodewords int
	Codewords        []byte
}

// rawCodewordCursor walks rawCodewords one byte at a time, erroring once the
// slice runs out instead of leaving every call site to bounds-check itself.
type rawCodewordCursor struct {
	raw    []byte
	offset int
}

func (c *rawCodewordCursor) next() (byte, error) {
	if c.offset >= len(c.raw) {
		return 0, fmt.Errorf("datamatrix/decoder: not enough raw codewords")
	}
	b := c.raw[c.offset]
	c.offset++
	return b, nil
}

// emptyDataBlocks allocates one DataBlock per block declared in ecBlocks,
// each sized for its data plus EC codewords but not yet filled in.
func emptyDataBlocks(ecBlocks *ECBlocks, ecCodewordsPerBlock int) []DataBlock {
	result := make([]DataBlock, 0, ecBlocks.NumBlocks())
	for _, block := range ecBlocks.Blocks {
		for i := 0; i < block.Count; i++ {
			result = append(result, DataBlock{
				NumDataCodewords: block.DataCodewords,
				Codewords:        make([]byte, block.DataCodewords+ecCodewordsPerBlock),
			})
		}
	}
	return result
}

// GetDataBlocks separates interleaved Data Matrix codewords into data and EC blocks.
// Data Matrix interleaves codewords across blocks: first all data codewords are
// interleaved, then all EC codewords are interleaved.
func GetDataBlocks(rawCodewords []byte, version *Version) ([]DataBlock, error) {
	ecBlocks := version.GetECBlocks()
	totalBlocks := ecBlocks.NumBlocks()
	if totalBlocks == 0 {
		return nil, fmt.Errorf("datamatrix/decoder: no EC blocks defined")
	}
	ecCodewordsPerBlock := ecBlocks.ECCodewords / totalBlocks
	result := emptyDataBlocks(&ecBlocks, ecCodewordsPerBlock)

	// Data Matrix interleaving: data codewords are interleaved across blocks,
	// then EC codewords are interleaved across blocks.

	// Find the shorter data block size (blocks may differ by 1 data codeword)
	shorterBlocksNumDataCodewords := result[0].NumDataCodewords
	for i := 1; i < totalBlocks; i++ {
		if result[i].NumDataCodewords < shorterBlocksNumDataCodewords {
			shorterBlocksNumDataCodewords = result[i].NumDataCodewords
		}
	}

	cursor := &rawCodewordCursor{raw: rawCodewords}

	// De-interleave data codewords
	for i := 0; i < shorterBlocksNumDataCodewords; i++ {
		for j := 0; j < totalBlocks; j++ {
			b, err := cursor.next()
			if err != nil {
				return nil, err
			}
			result[j].Codewords[i] = b
		}
	}

	// Handle longer blocks (extra data codeword), in block order
	for j := 0; j < totalBlocks; j++ {
		if result[j].NumDataCodewords == shorterBlocksNumDataCodewords {
			continue
		}
		b, err := cursor.next()
		if err != nil {
			return nil, err
		}
		result[j].Codewords[shorterBlocksNumDataCodewords] = b
	}

	// De-interleave EC codewords
	for i := 0; i < ecCodewordsPerBlock; i++ {
		for j := 0; j < totalBlocks; j++ {
			b, err := cursor.next()
			if err != nil {
				return nil, err
			}
			result[j].Codewords[result[j].NumDataCodewords+i] = b
		}
	}

	if cursor.offset != len(rawCodewords) {
		return nil, fmt.Errorf("datamatrix/decoder: raw codewords count mismatch: used %d of %d", cursor.offset, len(rawCodewords))
	}

	return result, nil
}
