// Package wizerr defines the typed error kinds that every fallible
// operation in the toolkit reports through, per the exception-channel
// design in the spec this module implements.
package wizerr

import (
	"errors"
	"fmt"
)

// Kind is one of the disjoint error kinds a fallible operation may report.
type Kind string

const (
	Allocation   Kind = "AllocationError"
	Hash         Kind = "HashError"
	MAC          Kind = "MACError"
	Cipher       Kind = "CipherError"
	Entropy      Kind = "EntropyError"
	Random       Kind = "RandomError"
	Key          Kind = "KeyError"
	Keymap       Kind = "KeymapError"
	Keyring      Kind = "KeyringError"
	Authenticate Kind = "AuthenticateError"
	Passphrase   Kind = "PassphraseError"
	File         Kind = "FileError"
	Configure    Kind = "ConfigureError"
	Option       Kind = "OptionError"
	String       Kind = "StringError"
	Resource     Kind = "ResourceError"
	Blob         Kind = "BlobError"
	Parse        Kind = "ParseError"
)

// Error pairs a Kind with a human-readable reason and description. Error()
// renders "<Kind>: <reason> (<description>)", dropping the parenthesised
// part when Description is empty; it adds no program name and no trailing
// period. It never carries key material, passphrases, plaintext or nonces.
type Error struct {
	Kind        Kind
	Reason      string
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Reason, e.Description)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, reason, description string) *Error {
	return &Error{Kind: kind, Reason: reason, Description: description}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Description: err.Error(), Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
