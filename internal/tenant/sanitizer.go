package tenant

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SafeIdentifier is a username that passed sanitization and may be used to
// key a participant's answer partition. The only way to obtain one is
// through Sanitize.
type SafeIdentifier string

func (s SafeIdentifier) String() string {
	return string(s)
}

// ErrInvalidIdentifier is returned for usernames that cannot safely name a
// storage partition.
var ErrInvalidIdentifier = errors.New("invalid identifier")

const (
	minIdentifierLen = 3
	maxIdentifierLen = 32
)

// identifierPattern is a strict allow-list: lower-case alphanumerics and
// underscore, starting with a letter. Quotes, whitespace and SQL
// metacharacters are rejected by construction.
var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reservedIdentifiers are names that would collide with SQL keywords or
// internal table names if ever surfaced in storage addressing.
var reservedIdentifiers = map[string]struct{}{
	"select": {}, "insert": {}, "update": {}, "delete": {}, "drop": {},
	"table": {}, "index": {}, "where": {}, "from": {}, "join": {},
	"user": {}, "users": {}, "admin": {}, "public": {}, "postgres": {},
	"question_bank": {}, "question_assignments": {}, "answer_partitions": {},
	"user_answers": {},
}

// Sanitize validates and normalizes a username for use as a partition key.
// Usernames are case-insensitive: the returned identifier is always lower
// case. Whitespace anywhere in the input, including leading or trailing,
// is rejected rather than stripped.
func Sanitize(username string) (SafeIdentifier, error) {
	normalized := strings.ToLower(username)

	if normalized == "" {
		return "", fmt.Errorf("%w: empty username", ErrInvalidIdentifier)
	}
	if len(normalized) < minIdentifierLen || len(normalized) > maxIdentifierLen {
		return "", fmt.Errorf("%w: length must be between %d and %d characters",
			ErrInvalidIdentifier, minIdentifierLen, maxIdentifierLen)
	}
	if !identifierPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: only lower-case letters, digits and underscore are allowed, starting with a letter",
			ErrInvalidIdentifier)
	}
	if _, reserved := reservedIdentifiers[normalized]; reserved {
		return "", fmt.Errorf("%w: %q is a reserved word", ErrInvalidIdentifier, normalized)
	}

	return SafeIdentifier(normalized), nil
}
