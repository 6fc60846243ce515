package library

import (
	"fmt"
	"slices"
	"strings"

	"video-tagger/internal/mediatypes"
)

// ParseSort validates sort field and order strings. Empty values default to
// name ascending.
func ParseSort(field, order string) (mediatypes.SortField, mediatypes.SortOrder, error) {
	f := mediatypes.SortField(strings.ToLower(field))
	switch f {
	case "":
		f = mediatypes.SortByName
	case mediatypes.SortByName, mediatypes.SortBySize, mediatypes.SortByDate:
	default:
		return "", "", fmt.Errorf("unknown sort field %q", field)
	}

	o := mediatypes.SortOrder(strings.ToLower(order))
	switch o {
	case "":
		o = mediatypes.SortAsc
	case mediatypes.SortAsc, mediatypes.SortDesc:
	default:
		return "", "", fmt.Errorf("unknown sort order %q", order)
	}
	return f, o, nil
}

// SortEntries sorts entries in place. Names compare case-insensitively, sizes
// and dates numerically. Folders and files sort together and equal keys keep
// their order.
func SortEntries(entries []mediatypes.Entry, field mediatypes.SortField, order mediatypes.SortOrder) {
	cmp := func(a, b mediatypes.Entry) int {
		switch field {
		case mediatypes.SortBySize:
			return compareInt64(a.Size, b.Size)
		case mediatypes.SortByDate:
			return a.ModTime.Compare(b.ModTime)
		default:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}

	slices.SortStableFunc(entries, func(a, b mediatypes.Entry) int {
		if order == mediatypes.SortDesc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
