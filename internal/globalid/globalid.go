// Package globalid encodes and decodes Relay global identifiers: opaque tokens
// of the form base64("Typename:id").
package globalid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned (wrapped) when a token is not a global ID.
var ErrInvalid = errors.New("invalid global ID")

// ID is a decoded global identifier.
type ID struct {
	ID       string `json:"id"`
	Typename string `json:"typename"`
}

// String returns the encoded token.
func (g ID) String() string { return Encode(g.Typename, g.ID) }

// Encode builds a global ID token from a type name and a local id.
func Encode(typename, id string) string {
	return base64.StdEncoding.EncodeToString([]byte(typename + ":" + id))
}

// Decode parses a token produced by Encode. Only the first colon separates the
// type name, so local ids may contain colons.
func Decode(token string) (ID, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return ID{}, fmt.Errorf("%w %q", ErrInvalid, token)
	}
	typename, id, ok := strings.Cut(string(raw), ":")
	if !ok || typename == "" || id == "" {
		return ID{}, fmt.Errorf("%w %q", ErrInvalid, token)
	}
	return ID{ID: id, Typename: typename}, nil
}

// Codec converts between decoded identifiers and their wire tokens.
type Codec interface {
	Encode(typename, id string) string
	Decode(token string) (ID, error)
}

// Base64 is the default Codec.
var Base64 Codec = base64Codec{}

type base64Codec struct{}

func (base64Codec) Encode(typename, id string) string { return Encode(typename, id) }
func (base64Codec) Decode(token string) (ID, error)   { return Decode(token) }
