package domain

import "strings"

// Identity addresses the owner of a cart: either an authenticated customer
// or an anonymous session, never both.
type Identity struct {
	customerID string
	sessionKey string
}

func CustomerIdentity(customerID string) Identity {
	return Identity{customerID: customerID}
}

func SessionIdentity(sessionKey string) Identity {
	return Identity{sessionKey: sessionKey}
}

func (i Identity) IsCustomer() bool { return i.customerID != "" }

func (i Identity) IsZero() bool { return i.customerID == "" && i.sessionKey == "" }

func (i Identity) CustomerID() string { return i.customerID }

func (i Identity) SessionKey() string { return i.sessionKey }

func (i Identity) String() string {
	switch {
	case i.customerID != "":
		return "customer:" + i.customerID
	case i.sessionKey != "":
		return "session:" + i.sessionKey
	default:
		return "anonymous"
	}
}

type LoginKeyKind int

const (
	LoginByUsername LoginKeyKind = iota
	LoginByEmail
)

// LoginKey is the credential identifier a user signs in with.
type LoginKey struct {
	Kind  LoginKeyKind
	Value string
}

func Username(v string) LoginKey { return LoginKey{Kind: LoginByUsername, Value: strings.TrimSpace(v)} }

func Email(v string) LoginKey {
	return LoginKey{Kind: LoginByEmail, Value: strings.ToLower(strings.TrimSpace(v))}
}

// ParseLoginKey classifies raw input: anything containing "@" is an email.
func ParseLoginKey(raw string) LoginKey {
	if strings.Contains(raw, "@") {
		return Email(raw)
	}
	return Username(raw)
}
