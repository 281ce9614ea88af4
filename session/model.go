package session

import "strings"

// DefaultKeyPrefix namespaces the credential slots.
const DefaultKeyPrefix = "@sportae:"

// Keys names the three credential slots.
type Keys struct {
	User        string
	Token       string
	SocketToken string
}

// DefaultKeys returns the slot names used by the mobile client.
func DefaultKeys() Keys {
	return KeysWithPrefix(DefaultKeyPrefix)
}

// KeysWithPrefix returns slot names under prefix. An empty prefix falls back
// to [DefaultKeyPrefix].
func KeysWithPrefix(prefix string) Keys {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keys{
		User:        prefix + "user",
		Token:       prefix + "token",
		SocketToken: prefix + "socketToken",
	}
}

func (k Keys) all() []string {
	return []string{k.User, k.Token, k.SocketToken}
}

// Record is the raw content of the three slots. UserJSON is the serialized
// user exactly as stored; decoding it is the caller's job.
type Record struct {
	UserJSON    string
	AuthToken   string
	SocketToken string
}

// Complete reports whether the record carries both a user and a token.
func (r Record) Complete() bool {
	return r.UserJSON != "" && r.AuthToken != ""
}
