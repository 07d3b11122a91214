// Package framespec expands Nuke-style frame templates.
//
// A template such as "render.####.exr" names one file per frame. Every
// unescaped run of '#' characters is replaced by the frame number padded with
// zeros to the length of the run. "\#" stands for a literal '#'.
package framespec

import (
	"fmt"
	"strings"
)

// Range is an inclusive frame range.
type Range struct {
	Start int
	End   int
}

// Len returns the number of frames covered, zero for an inverted range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Spec pairs a filename template with an optional frame range.
type Spec struct {
	Template string
	Range    *Range
}

// Frames returns one concrete filename per frame. Without a range the
// template itself is the only entry.
func (s Spec) Frames() []string {
	if s.Range == nil {
		return []string{s.Template}
	}
	frames := make([]string, 0, s.Range.Len())
	for f := s.Range.Start; f <= s.Range.End; f++ {
		frames = append(frames, ReplaceFrameSymbols(s.Template, f))
	}
	return frames
}

// HasFrameSymbols reports whether s holds at least one unescaped '#'.
func HasFrameSymbols(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && (i == 0 || s[i-1] != '\\') {
			return true
		}
	}
	return false
}

// ReplaceFrameSymbols substitutes frame into every unescaped run of '#'.
func ReplaceFrameSymbols(s string, frame int) string {
	if !strings.ContainsRune(s, '#') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == '#' {
			b.WriteByte('#')
			i += 2
			continue
		}
		if c != '#' {
			b.WriteByte(c)
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '#' {
			j++
		}
		fmt.Fprintf(&b, "%0*d", j-i, frame)
		i = j
	}
	return b.String()
}
