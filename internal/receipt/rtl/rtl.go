// Package rtl prepares Arabic text for renderers that draw runes strictly
// left to right. Text is shaped into presentation forms and then reordered
// from logical to visual order for a right-to-left paragraph.
package rtl

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/unicode/bidi"
)

// ErrInvalidText is returned for input that is not valid UTF-8.
var ErrInvalidText = errors.New("rtl: text is not valid UTF-8")

type direction int

const (
	neutral direction = iota
	ltr
	rtl
)

var mirrors = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
}

// Convert shapes s and returns it in visual order.
func Convert(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", ErrInvalidText
	}
	return string(Reorder(Shape([]rune(s)))), nil
}

// Visual is Convert that falls back to s unchanged when it cannot be converted.
func Visual(s string) string {
	out, err := Convert(s)
	if err != nil {
		return s
	}
	return out
}

// Reorder lays out logical-order text for a right-to-left paragraph: runs of
// left-to-right text and numbers keep their internal order, everything else
// is reversed with brackets mirrored.
func Reorder(text []rune) []rune {
	dirs := resolve(text)

	out := make([]rune, 0, len(text))
	for end := len(text); end > 0; {
		start := end - 1
		for start > 0 && dirs[start-1] == dirs[end-1] {
			start--
		}
		if dirs[end-1] == ltr {
			out = append(out, text[start:end]...)
		} else {
			for i := end - 1; i >= start; i-- {
				out = append(out, mirror(text[i]))
			}
		}
		end = start
	}
	return out
}

// resolve assigns every rune a direction. Neutrals take ltr only when the
// strong runes on both sides are ltr; otherwise they follow the paragraph.
func resolve(text []rune) []direction {
	dirs := make([]direction, len(text))
	for i, r := range text {
		dirs[i] = classify(r)
	}

	prev := rtl
	for i := 0; i < len(dirs); {
		if dirs[i] != neutral {
			prev = dirs[i]
			i++
			continue
		}
		j := i
		for j < len(dirs) && dirs[j] == neutral {
			j++
		}
		next := rtl
		if j < len(dirs) {
			next = dirs[j]
		}
		fill := rtl
		if prev == ltr && next == ltr {
			fill = ltr
		}
		for k := i; k < j; k++ {
			dirs[k] = fill
		}
		i = j
	}
	return dirs
}

func classify(r rune) direction {
	props, _ := bidi.LookupRune(r)
	switch props.Class() {
	case bidi.L, bidi.EN, bidi.AN:
		return ltr
	case bidi.R, bidi.AL:
		return rtl
	default:
		return neutral
	}
}

func mirror(r rune) rune {
	if m, ok := mirrors[r]; ok {
		return m
	}
	return r
}
