package framespec

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// NextVersion bumps the version number embedded in a filename.
//
// The version lives in the last dot-separated segment of the basename that
// is not the extension or a pure frame-symbol segment. Trailing digits of
// that segment are incremented keeping their width; a segment without
// digits gains "001". Frame symbols attached to the segment are kept.
//
//	shot_v001.exr       -> shot_v002.exr
//	shot_v009.####.exr  -> shot_v010.####.exr
//	plate_####.exr      -> plate001_####.exr
func NextVersion(filename string) string {
	dir, base := filepath.Split(filename)
	parts := strings.Split(base, ".")

	idx := len(parts) - 1
	if len(parts) > 1 {
		idx = len(parts) - 2
	}
	for i := len(parts) - 1; i > 0; i-- {
		if allFrameSymbols(parts[i]) && i-1 < idx {
			idx = i - 1
		}
	}

	seg := parts[idx]
	pounds := 0
	if k := strings.IndexByte(seg, '#'); k >= 0 {
		pounds = len(seg) - k
		seg = seg[:k]
	}
	trimmed := strings.TrimRight(seg, "_")
	underscores := len(seg) - len(trimmed)
	seg = trimmed

	digits := trailingDigits(seg)
	number, width := 0, 3
	if digits != "" {
		number, _ = strconv.Atoi(digits)
		width = len(digits)
		seg = seg[:len(seg)-len(digits)]
	}
	seg += fmt.Sprintf("%0*d", width, number+1)
	if pounds > 0 {
		seg += "_" + strings.Repeat("_", max(underscores-1, 0)) + strings.Repeat("#", pounds)
	}
	parts[idx] = seg
	return dir + strings.Join(parts, ".")
}

func allFrameSymbols(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '#' {
			return false
		}
	}
	return true
}

func trailingDigits(s string) string {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	return s[i:]
}
