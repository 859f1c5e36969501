package deps

import (
	"strconv"
	"strings"
)

// VerCmp compares two pacman version strings the way alpm orders them:
// [epoch:]pkgver[-pkgrel], with alternating numeric and alphabetic
// segments, numeric segments beating alphabetic ones, and a longer
// numeric run winning. Returns -1, 0 or 1.
func VerCmp(a, b string) int {
	epochA, restA := splitEpoch(a)
	epochB, restB := splitEpoch(b)
	if epochA != epochB {
		if epochA < epochB {
			return -1
		}
		return 1
	}

	verA, relA := splitRelease(restA)
	verB, relB := splitRelease(restB)

	if cmp := rpmVerCmp(verA, verB); cmp != 0 {
		return cmp
	}

	// only compare pkgrel when both carry one
	if relA != "" && relB != "" {
		return rpmVerCmp(relA, relB)
	}
	return 0
}

func splitEpoch(v string) (int, string) {
	idx := strings.Index(v, ":")
	if idx < 0 {
		return 0, v
	}
	epoch, err := strconv.Atoi(v[:idx])
	if err != nil {
		return 0, v
	}
	return epoch, v[idx+1:]
}

func splitRelease(v string) (string, string) {
	idx := strings.LastIndex(v, "-")
	if idx < 0 {
		return v, ""
	}
	return v[:idx], v[idx+1:]
}

// rpmVerCmp compares two version strings segment by segment
func rpmVerCmp(a, b string) int {
	if a == b {
		return 0
	}

	for a != "" || b != "" {
		// skip separators
		a = strings.TrimLeft(a, separators)
		b = strings.TrimLeft(b, separators)

		if a == "" || b == "" {
			break
		}

		var segA, segB string
		numeric := isDigit(a[0])

		segA, a = takeSegment(a, numeric)
		segB, b = takeSegment(b, isDigit(b[0]))

		// one side numeric, the other alphabetic: numeric is newer
		if numeric != isDigitSeg(segB) {
			if numeric {
				return 1
			}
			return -1
		}

		if numeric {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) < len(segB) {
					return -1
				}
				return 1
			}
		}

		if cmp := strings.Compare(segA, segB); cmp != 0 {
			return cmp
		}
	}

	// the version with a remaining numeric segment is newer; a
	// remaining alphabetic segment marks an older pre-release
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		if isDigit(b[0]) {
			return -1
		}
		return 1
	default:
		if isDigit(a[0]) {
			return 1
		}
		return -1
	}
}

const separators = ".-_+~"

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigitSeg(s string) bool {
	return s != "" && isDigit(s[0])
}

// takeSegment splits off the leading run of digits or non-digits
func takeSegment(s string, numeric bool) (string, string) {
	i := 0
	for i < len(s) {
		if strings.ContainsRune(separators, rune(s[i])) {
			break
		}
		if isDigit(s[i]) != numeric {
			break
		}
		i++
	}
	return s[:i], s[i:]
}
