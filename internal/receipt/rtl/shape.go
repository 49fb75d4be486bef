package rtl

// forms holds the presentation forms of a letter: isolated, final, initial,
// medial. A zero entry means the letter has no such form.
type forms [4]rune

const (
	isolated = iota
	final
	initial
	medial
)

const (
	lam  = 'ل'
	none = rune(0)
)

var letters = map[rune]forms{
	'ء': {0xFE80, none, none, none},
	'آ': {0xFE81, 0xFE82, none, none},
	'أ': {0xFE83, 0xFE84, none, none},
	'ؤ': {0xFE85, 0xFE86, none, none},
	'إ': {0xFE87, 0xFE88, none, none},
	'ئ': {0xFE89, 0xFE8A, 0xFE8B, 0xFE8C},
	'ا': {0xFE8D, 0xFE8E, none, none},
	'ب': {0xFE8F, 0xFE90, 0xFE91, 0xFE92},
	'ة': {0xFE93, 0xFE94, none, none},
	'ت': {0xFE95, 0xFE96, 0xFE97, 0xFE98},
	'ث': {0xFE99, 0xFE9A, 0xFE9B, 0xFE9C},
	'ج': {0xFE9D, 0xFE9E, 0xFE9F, 0xFEA0},
	'ح': {0xFEA1, 0xFEA2, 0xFEA3, 0xFEA4},
	'خ': {0xFEA5, 0xFEA6, 0xFEA7, 0xFEA8},
	'د': {0xFEA9, 0xFEAA, none, none},
	'ذ': {0xFEAB, 0xFEAC, none, none},
	'ر': {0xFEAD, 0xFEAE, none, none},
	'ز': {0xFEAF, 0xFEB0, none, none},
	'س': {0xFEB1, 0xFEB2, 0xFEB3, 0xFEB4},
	'ش': {0xFEB5, 0xFEB6, 0xFEB7, 0xFEB8},
	'ص': {0xFEB9, 0xFEBA, 0xFEBB, 0xFEBC},
	'ض': {0xFEBD, 0xFEBE, 0xFEBF, 0xFEC0},
	'ط': {0xFEC1, 0xFEC2, 0xFEC3, 0xFEC4},
	'ظ': {0xFEC5, 0xFEC6, 0xFEC7, 0xFEC8},
	'ع': {0xFEC9, 0xFECA, 0xFECB, 0xFECC},
	'غ': {0xFECD, 0xFECE, 0xFECF, 0xFED0},
	'ـ': {0x0640, 0x0640, 0x0640, 0x0640},
	'ف': {0xFED1, 0xFED2, 0xFED3, 0xFED4},
	'ق': {0xFED5, 0xFED6, 0xFED7, 0xFED8},
	'ك': {0xFED9, 0xFEDA, 0xFEDB, 0xFEDC},
	'ل': {0xFEDD, 0xFEDE, 0xFEDF, 0xFEE0},
	'م': {0xFEE1, 0xFEE2, 0xFEE3, 0xFEE4},
	'ن': {0xFEE5, 0xFEE6, 0xFEE7, 0xFEE8},
	'ه': {0xFEE9, 0xFEEA, 0xFEEB, 0xFEEC},
	'و': {0xFEED, 0xFEEE, none, none},
	'ى': {0xFEEF, 0xFEF0, none, none},
	'ي': {0xFEF1, 0xFEF2, 0xFEF3, 0xFEF4},
}

// lamAlef maps the alef following a lam to the ligature's isolated and final forms.
var lamAlef = map[rune][2]rune{
	'آ': {0xFEF5, 0xFEF6},
	'أ': {0xFEF7, 0xFEF8},
	'إ': {0xFEF9, 0xFEFA},
	'ا': {0xFEFB, 0xFEFC},
}

// transparent marks (harakat, superscript alef) do not break joining.
func transparent(r rune) bool {
	return (r >= 'ً' && r <= 'ٟ') || r == 'ٰ'
}

// joinsForward reports whether r connects to the letter after it.
func joinsForward(r rune) bool {
	f, ok := letters[r]
	return ok && f[initial] != none
}

// joinsBackward reports whether r connects to the letter before it.
func joinsBackward(r rune) bool {
	f, ok := letters[r]
	return ok && f[final] != none
}

// Shape replaces Arabic letters with their contextual presentation forms and
// folds lam followed by alef into a single ligature. Other runes pass through.
func Shape(text []rune) []rune {
	out := make([]rune, 0, len(text))
	prevJoins := false

	for i := 0; i < len(text); i++ {
		r := text[i]
		f, ok := letters[r]
		if !ok {
			if !transparent(r) {
				prevJoins = false
			}
			out = append(out, r)
			continue
		}

		next, nextAt := nextLetter(text, i+1)
		connectPrev := prevJoins && f[final] != none

		if r == lam && nextAt >= 0 {
			if lig, ok := lamAlef[next]; ok {
				if connectPrev {
					out = append(out, lig[1])
				} else {
					out = append(out, lig[0])
				}
				// Marks between the lam and the alef are kept after the ligature.
				out = append(out, text[i+1:nextAt]...)
				i = nextAt
				prevJoins = false
				continue
			}
		}

		connectNext := f[initial] != none && nextAt >= 0 && joinsBackward(next)
		switch {
		case connectPrev && connectNext:
			out = append(out, f[medial])
		case connectPrev:
			out = append(out, f[final])
		case connectNext:
			out = append(out, f[initial])
		default:
			out = append(out, f[isolated])
		}
		prevJoins = joinsForward(r)
	}
	return out
}

// nextLetter returns the first rune at or after i that is not a transparent
// mark, and its index, or -1 when the text ends first.
func nextLetter(text []rune, i int) (rune, int) {
	for ; i < len(text); i++ {
		if !transparent(text[i]) {
			return text[i], i
		}
	}
	return 0, -1
}
