package dag

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/depends/internal/node"
)

// SafeName returns a cleaned variant of candidate that no node in the graph
// uses. A name without a trailing number gets "1" appended; otherwise the
// trailing number is incremented, keeping its zero padding.
func (g *DAG) SafeName(candidate string) string {
	name := node.CleanName(candidate)
	for {
		if _, taken := g.NodeNamed(name); !taken {
			return name
		}
		prefix := strings.TrimRight(name, "0123456789")
		digits := name[len(prefix):]
		if digits == "" {
			name += "1"
			continue
		}
		name = prefix + incrementDigits(digits)
	}
}

// incrementDigits adds one to a decimal digit string of any length, keeping
// its width unless every digit carries.
func incrementDigits(digits string) string {
	b := []byte(digits)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}

// UniqueGroupName returns the first "groupNN" name not used by a group.
func (g *DAG) UniqueGroupName() string {
	names := make([]string, 0, len(g.groups))
	for _, grp := range g.groups {
		names = append(names, grp.Name)
	}
	return UniqueSimilarName("group", names)
}

// UniqueSimilarName returns prefix followed by the smallest two digit index
// from 1 upwards not already used by a name in existing.
func UniqueSimilarName(prefix string, existing []string) string {
	var used []int
	for _, name := range existing {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		if i, err := strconv.Atoi(rest); err == nil {
			used = append(used, i)
		}
	}
	sort.Ints(used)
	next := 1
	for _, i := range used {
		if i == next {
			next++
		} else if i > next {
			break
		}
	}
	return fmt.Sprintf("%s%02d", prefix, next)
}
