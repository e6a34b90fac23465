package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"kpoet/internal/diag"
)

// Ident normalizes s to NFC and checks that it is a valid identifier.
func Ident(s string) (string, error) {
	id := norm.NFC.String(s)
	if !IsIdent(id) {
		return "", diag.Errorf(diag.SymInvalidIdentifier, "not a valid name: '%s'", s)
	}
	return id, nil
}

// IsIdent reports whether s is a letter or underscore followed by letters,
// digits and underscores.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func splitNamespace(namespace string) ([]string, error) {
	if namespace == "" {
		return nil, nil
	}
	parts := strings.Split(namespace, ".")
	for i, p := range parts {
		id, err := Ident(p)
		if err != nil {
			return nil, diag.Errorf(diag.SymMalformedName, "malformed namespace '%s'", namespace)
		}
		parts[i] = id
	}
	return parts, nil
}
