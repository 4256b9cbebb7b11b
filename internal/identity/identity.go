package identity

import (
	"errors"
	"strings"
)

// Kind discriminates the contact channel an identity was established over.
type Kind string

const (
	KindPhone Kind = "phone"
	KindEmail Kind = "email"
)

// ErrInvalid indicates the raw input is neither a valid phone number nor
// a valid email address.
var ErrInvalid = errors.New("invalid identity")

// Identity is the stable key for a device/user, derived from a phone
// number or email address. Immutable once a ledger exists for it.
type Identity struct {
	Kind Kind
	// Key is the canonical form: bare digits for phones, lower-cased for
	// emails. Ledgers and sessions are keyed by it.
	Key string
}

// Normalize validates raw contact input and returns its canonical identity.
// Phones must be exactly 10 digits starting with 0 (separators are
// stripped first); emails must have a local@domain.tld shape with no
// whitespace.
func Normalize(raw string) (Identity, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Identity{}, ErrInvalid
	}

	if strings.ContainsRune(trimmed, '@') {
		email := strings.ToLower(trimmed)
		if !validEmail(email) {
			return Identity{}, ErrInvalid
		}
		return Identity{Kind: KindEmail, Key: email}, nil
	}

	digits := stripNonDigits(trimmed)
	if !validPhone(digits) {
		return Identity{}, ErrInvalid
	}
	return Identity{Kind: KindPhone, Key: digits}, nil
}

// Mask renders the identity for display on the code-entry screen: the
// first three characters survive, the rest of the local part is hidden.
func (id Identity) Mask() string {
	switch id.Kind {
	case KindEmail:
		at := strings.IndexRune(id.Key, '@')
		local, domain := id.Key[:at], id.Key[at+1:]
		if len(local) <= 3 {
			return local + "***@" + domain
		}
		return local[:3] + "***@" + domain
	case KindPhone:
		if len(id.Key) < 6 {
			return id.Key
		}
		return id.Key[:3] + "****" + id.Key[len(id.Key)-3:]
	default:
		return id.Key
	}
}

// LedgerKey derives the persistence key for this identity's ledger by
// replacing every non-alphanumeric rune with an underscore.
func (id Identity) LedgerKey() string {
	var b strings.Builder
	b.Grow(len(id.Key))
	for _, r := range id.Key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func validPhone(digits string) bool {
	if len(digits) != 10 || digits[0] != '0' {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

func validEmail(email string) bool {
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	at := strings.IndexRune(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return true
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
