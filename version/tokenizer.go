package version

import "strings"

// Split breaks identifier into the substrings separated by every literal
// occurrence of delimiter. Empty tokens between adjacent delimiters and at
// either end are kept, so positions stay stable across identifiers.
//
// An identifier without the delimiter, or an empty delimiter, yields a single
// token holding the whole identifier.
func Split(identifier, delimiter string) []string {
	if delimiter == "" {
		return []string{identifier}
	}
	return strings.Split(identifier, delimiter)
}
