package format

import (
	"fmt"
	"strings"
)

// Case selects the letter case used for option labels.
type Case int

const (
	// Lower letters options a) b) c), used on screen.
	Lower Case = iota
	// Upper letters options A) B) C), used on the printed paper.
	Upper
)

// Checkbox is the empty box glyph printed before statements.
const Checkbox = "( )"

const checkboxPrefix = Checkbox + " "

// Letter returns the label of the i-th option: "a)" for Lower, "A)" for
// Upper. Past z it continues aa), ab), ...
func Letter(i int, c Case) string {
	base := 'a'
	if c == Upper {
		base = 'A'
	}
	if i < 0 {
		i = 0
	}
	var sb []rune
	for n := i; ; n = n/26 - 1 {
		sb = append([]rune{base + rune(n%26)}, sb...)
		if n < 26 {
			break
		}
	}
	return string(sb) + ")"
}

// StripCheckbox removes every leading "( ) " prefix.
func StripCheckbox(s string) string {
	for {
		trimmed := strings.TrimLeft(s, " ")
		if !strings.HasPrefix(trimmed, Checkbox) {
			return s
		}
		s = strings.TrimLeft(strings.TrimPrefix(trimmed, Checkbox), " ")
	}
}

// WithCheckbox prefixes s with exactly one "( ) ". Applying it twice yields
// the same string.
func WithCheckbox(s string) string {
	return checkboxPrefix + StripCheckbox(s)
}

// SumValue is the value of the i-th option of a summation question.
func SumValue(i int) int {
	return 1 << i
}

// SumBadge formats a summation value or total. Values are zero-padded to
// two digits; wider values are printed in full.
func SumBadge(v int) string {
	return fmt.Sprintf("%02d", v)
}
