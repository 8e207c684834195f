package dbglog

/*
Mask filtering and the textual mask grammar:

	DEFAULT | ALL | NONE | (D|I1|I2|I3|I4|W1|W2|W3|W4|E1|E2|E3|E4)+

Parsing is all-or-nothing over the whole input and tokens are OR-combined in
any order. Printing is canonical per category: only the coarsest tier present
in a category is emitted, so masks mixing tiers inside one category are not
reproduced literally (the model's granularity is one tier per category).
*/

import (
	"strconv"

	"github.com/pkg/errors"
)

// Accepts reports whether level passes the mask: all of the level's bits are
// set in the mask, or the level is fatal.
func (m Mask) Accepts(level Level) bool {
	return (^uint32(m))&uint32(level) == 0 || level == LVL_FATAL
}

// Has reports whether every bit of other is set in m.
func (m Mask) Has(other Mask) bool {
	return m&other == other
}

// String returns the canonical textual form of the mask.
func (m Mask) String() string {
	switch m {
	case MASK_NONE:
		return "NONE"
	case MASK_ALL:
		return "ALL"
	}
	var buf [8]byte
	out := buf[:0]
	if m&_CAT_DEBUG != 0 {
		out = append(out, 'D')
	}
	out = appendTier(out, 'I', uint32(m&_CAT_INFO)>>4)
	out = appendTier(out, 'W', uint32(m&_CAT_WARN)>>8)
	out = appendTier(out, 'E', uint32(m&_CAT_ERR)>>12)
	if len(out) == 0 {
		// only fatal bits: filtering-equivalent to NONE
		return "NONE"
	}
	return string(out)
}

// appendTier appends the token of the coarsest tier whose bit is set in the
// category nibble (0x8 -> 1 ... 0x1 -> 4).
func appendTier(out []byte, letter byte, nibble uint32) []byte {
	switch {
	case nibble&0x8 != 0:
		return append(out, letter, '1')
	case nibble&0x4 != 0:
		return append(out, letter, '2')
	case nibble&0x2 != 0:
		return append(out, letter, '3')
	case nibble&0x1 != 0:
		return append(out, letter, '4')
	}
	return out
}

// ParseMask parses the textual mask form. Empty input, unknown tokens and
// trailing garbage fail with ErrInvalidMaskSyntax.
func ParseMask(text string) (Mask, error) {
	switch text {
	case "DEFAULT":
		return MASK_DEFAULT, nil
	case "ALL":
		return MASK_ALL, nil
	case "NONE":
		return MASK_NONE, nil
	case "":
		return MASK_NONE, errors.Wrap(ErrInvalidMaskSyntax, "<>")
	}
	var m Mask
	for i := 0; i < len(text); {
		if text[i] == 'D' {
			m |= Mask(LVL_DEBUG)
			i++
			continue
		}
		if i+1 < len(text) {
			if lvl, ok := tierLevel(text[i], text[i+1]); ok {
				m |= Mask(lvl)
				i += 2
				continue
			}
		}
		return MASK_NONE, errors.Wrapf(ErrInvalidMaskSyntax, "<%s> at offset %d", text, i)
	}
	return m, nil
}

// MustParseMask is like ParseMask but panics on error. Intended for
// package-level variables initialized from constant text.
func MustParseMask(text string) Mask {
	m, err := ParseMask(text)
	if err != nil {
		panic(err)
	}
	return m
}

// tierLevel resolves a category letter and a tier digit to a level.
func tierLevel(letter, digit byte) (Level, bool) {
	if digit < '1' || digit > '4' {
		return LVL_NONE, false
	}
	var coarsest Level
	switch letter {
	case 'I':
		coarsest = LVL_INFO1
	case 'W':
		coarsest = LVL_WARN1
	case 'E':
		coarsest = LVL_ERR1
	default:
		return LVL_NONE, false
	}
	// each finer tier drops the highest bit of the category nibble
	lvl := coarsest
	for t := byte('1'); t < digit; t++ {
		lvl &^= highestBit(lvl)
	}
	return lvl, true
}

func highestBit(l Level) Level {
	h := Level(1)
	for l > 1 {
		l >>= 1
		h <<= 1
	}
	return h
}

// MarshalText implements encoding.TextMarshaler.
func (m Mask) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mask) UnmarshalText(text []byte) error {
	parsed, err := ParseMask(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Set implements flag.Value so a Mask can back a command line flag.
func (m *Mask) Set(text string) error {
	return m.UnmarshalText([]byte(text))
}

// Hex returns the raw bit pattern, e.g. "0x07730".
func (m Mask) Hex() string {
	s := strconv.FormatUint(uint64(m), 16)
	for len(s) < 5 {
		s = "0" + s
	}
	return "0x" + s
}

/////////////////////////////////////////////////////////////////////////////////////////

// Code returns the 2-letter level code used in log lines ("??" for values
// that are not one of the named levels).
func (l Level) Code() string {
	if c, ok := levelCodes[l]; ok {
		return c
	}
	return "??"
}

func (l Level) String() string {
	return l.Code()
}

// category returns the category nibble the level belongs to.
func (l Level) category() Mask {
	for _, cat := range [...]Mask{_CAT_DEBUG, _CAT_INFO, _CAT_WARN, _CAT_ERR, _CAT_FATAL} {
		if Mask(l)&cat != 0 {
			return cat
		}
	}
	return 0
}

// ParseLevel parses a level code ("DD", "I3", "FF") or a mask token naming a
// single level ("D", "F").
func ParseLevel(text string) (Level, error) {
	switch text {
	case "D", "DD":
		return LVL_DEBUG, nil
	case "F", "FF":
		return LVL_FATAL, nil
	}
	if len(text) == 2 {
		if lvl, ok := tierLevel(text[0], text[1]); ok {
			return lvl, nil
		}
	}
	return LVL_NONE, errors.Wrapf(ErrInvalidLevelSyntax, "<%s>", text)
}
