package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/undiff"
)

// StyleFromPalette returns a function that maps chroma token types to
// undiff styles based on the palette's JSON colors.
func StyleFromPalette(p undiff.Palette) StyleFunc {
	return func(tt chromalib.TokenType) undiff.Style {
		switch tt {
		// Object keys
		case chromalib.NameTag, chromalib.NameAttribute:
			return undiff.Style{Foreground: string(p.Key), Bold: true}

		// true, false, null
		case chromalib.Keyword, chromalib.KeywordConstant:
			return undiff.Style{Foreground: string(p.Keyword)}

		case chromalib.String, chromalib.StringDouble, chromalib.StringSingle,
			chromalib.StringEscape, chromalib.StringOther:
			return undiff.Style{Foreground: string(p.String)}

		case chromalib.Number, chromalib.NumberFloat, chromalib.NumberInteger,
			chromalib.NumberIntegerLong:
			return undiff.Style{Foreground: string(p.Number)}

		case chromalib.Punctuation, chromalib.Operator:
			return undiff.Style{Foreground: string(p.Punctuation)}

		default:
			return undiff.Style{}
		}
	}
}
