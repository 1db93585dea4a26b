package maxicode

import "github.com/cdellis/barscan"

func init() {
	barscan.RegisterReader(barscan.FormatMaxiCode, func(opts *barscan.DecodeOptions) barscan.Reader {
		return NewReader()
	})
}
