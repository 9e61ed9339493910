// Package names turns roster full names into the three search-form tokens.
package names

import "strings"

// Tokens are the values typed into the first name, paternal surname and
// maternal surname filters of the search form.
type Tokens struct {
	First    string
	Paternal string
	Maternal string
}

// Split decomposes a full name positionally. Up to three words are kept in
// order and padded with empty strings. With four or more words the middle
// names are dropped and the last two words are taken as the surnames, which
// loses compound surnames such as "de la Fuente".
func Split(full string) Tokens {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return Tokens{}
	case 1:
		return Tokens{First: parts[0]}
	case 2:
		return Tokens{First: parts[0], Paternal: parts[1]}
	case 3:
		return Tokens{First: parts[0], Paternal: parts[1], Maternal: parts[2]}
	}
	n := len(parts)
	return Tokens{First: parts[0], Paternal: parts[n-2], Maternal: parts[n-1]}
}
