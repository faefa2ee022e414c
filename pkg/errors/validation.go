package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIdentifierLength bounds identifiers accepted for variables and block
// instances. IEC 61131-3 leaves the limit to the implementation.
const maxIdentifierLength = 64

// identifierRegex matches an IEC 61131-3 identifier: a letter or underscore
// followed by letters, digits and single underscores.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// directAddressRegex matches located variables such as %IX0.0, %QW3 or %MD10.
var directAddressRegex = regexp.MustCompile(`^%[IQM][XBWDL]?[0-9]+(\.[0-9]+)*$`)

// reservedWords are keywords that cannot be used as identifiers.
var reservedWords = map[string]bool{
	"AND": true, "OR": true, "XOR": true, "NOT": true, "MOD": true,
	"IF": true, "THEN": true, "ELSE": true, "ELSIF": true, "END_IF": true,
	"CASE": true, "OF": true, "END_CASE": true, "FOR": true, "TO": true,
	"BY": true, "DO": true, "END_FOR": true, "WHILE": true, "END_WHILE": true,
	"REPEAT": true, "UNTIL": true, "END_REPEAT": true, "RETURN": true,
	"EXIT": true, "TRUE": true, "FALSE": true, "VAR": true, "END_VAR": true,
	"PROGRAM": true, "FUNCTION": true, "FUNCTION_BLOCK": true,
}

// ValidateIdentifier validates an IEC 61131-3 identifier used as a block
// instance name or as one segment of a variable path.
//
// The rules are:
//   - No empty names
//   - Maximum length of 64 characters
//   - Must start with a letter or underscore
//   - No consecutive underscores and no trailing underscore
//   - Not a reserved keyword
func ValidateIdentifier(name string) error {
	if name == "" {
		return New(ErrCodeInvalidVariable, "identifier cannot be empty")
	}
	if len(name) > maxIdentifierLength {
		return New(ErrCodeInvalidVariable, "identifier too long (max %d characters)", maxIdentifierLength)
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidVariable, "invalid identifier: %q", name)
	}
	if strings.Contains(name, "__") || (len(name) > 1 && strings.HasSuffix(name, "_")) {
		return New(ErrCodeInvalidVariable, "identifier cannot contain double or trailing underscores: %q", name)
	}
	if reservedWords[strings.ToUpper(name)] {
		return New(ErrCodeInvalidVariable, "identifier is a reserved word: %q", name)
	}
	return nil
}

// ValidateVariableName validates the variable bound to a contact, coil or
// block port. Accepted forms are plain identifiers, dotted structure access
// (Motor.Running) and direct addresses (%IX0.0).
func ValidateVariableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidVariable, "variable name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidVariable, "variable name contains invalid control characters")
		}
	}
	if strings.HasPrefix(name, "%") {
		if !directAddressRegex.MatchString(strings.ToUpper(name)) {
			return New(ErrCodeInvalidVariable, "invalid direct address: %q", name)
		}
		return nil
	}
	for _, part := range strings.Split(name, ".") {
		if err := ValidateIdentifier(part); err != nil {
			return Wrap(ErrCodeInvalidVariable, err, "invalid variable %q", name)
		}
	}
	return nil
}

// sessionIDRegex matches ids that are safe to use as file names and keys.
var sessionIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateSessionID validates an editing session id before it is used to
// build a file path or a storage key.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if !sessionIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid session id: %q", id)
	}
	return nil
}
