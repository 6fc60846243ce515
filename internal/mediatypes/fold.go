package mediatypes

import "golang.org/x/text/cases"

// FoldTag returns the Unicode case-folded form of a tag name, used for
// case-insensitive tag matching. Tag identity itself stays case-sensitive.
func FoldTag(s string) string {
	return cases.Fold().String(s)
}
