// Package classify decides whether a text reads like a legal instrument.
package classify

import "strings"

// LegalKeywords are matched case-sensitively as substrings.
var LegalKeywords = []string{"WHEREAS", "IN WITNESS WHEREOF", "THIS AGREEMENT"}

// IsLegal reports whether text contains any of LegalKeywords.
func IsLegal(text string) bool {
	for _, kw := range LegalKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
