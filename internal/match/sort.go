package match

import (
	"sort"
	"strings"
)

// Key is the ordering key of one ranked row.
type Key struct {
	Score       float64
	StudentID   string
	GroupID     string
	CandidateID string
}

// Less orders by score descending, then student, group and candidate ids
// ascending.
func (k Key) Less(o Key) bool {
	if k.Score != o.Score {
		return k.Score > o.Score
	}
	if c := CompareIDs(k.StudentID, o.StudentID); c != 0 {
		return c < 0
	}
	if c := CompareIDs(k.GroupID, o.GroupID); c != 0 {
		return c < 0
	}
	return CompareIDs(k.CandidateID, o.CandidateID) < 0
}

// SortByKey sorts rows in place by the key each row maps to. The sort is
// stable so rows with identical keys keep their input order.
func SortByKey[T any](rows []T, key func(T) Key) {
	sort.SliceStable(rows, func(i, j int) bool {
		return key(rows[i]).Less(key(rows[j]))
	})
}

// CompareIDs compares identifiers so that "P2" sorts before "P10": digit
// runs compare numerically, everything else byte-wise.
func CompareIDs(a, b string) int {
	for a != "" && b != "" {
		da, ra := leadingDigits(a)
		db, rb := leadingDigits(b)
		if da != "" && db != "" {
			if c := compareNumeric(da, db); c != 0 {
				return c
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			if a[0] < b[0] {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}
	return strings.Compare(a, b)
}

func leadingDigits(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

func compareNumeric(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	// Equal value: fewer leading zeros first keeps the order total.
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
