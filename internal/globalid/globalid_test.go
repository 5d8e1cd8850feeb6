package globalid

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name     string
		typename string
		id       string
	}{
		{"simple", "User", "123"},
		{"uuid", "Poll", "550e8400-e29b-41d4-a716-446655440000"},
		{"colon in id", "Message", "foo/bar:baz"},
		{"unicode", "Tag", "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(Encode(tt.typename, tt.id))
			require.NoError(t, err)
			require.Equal(t, ID{ID: tt.id, Typename: tt.typename}, got)
		})
	}
}

func TestEncodeFormat(t *testing.T) {
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("T:a")), Encode("T", "a"))
	require.Equal(t, Encode("T", "a"), ID{ID: "a", Typename: "T"}.String())
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "!!!invalid!!!"},
		{"empty string", ""},
		{"no colon", base64.StdEncoding.EncodeToString([]byte("UserABC"))},
		{"empty typename", base64.StdEncoding.EncodeToString([]byte(":abc"))},
		{"empty id", base64.StdEncoding.EncodeToString([]byte("User:"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestIDJSON(t *testing.T) {
	b, err := json.Marshal(ID{ID: "a", Typename: "T"})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"a","typename":"T"}`, string(b))
}

func TestBase64Codec(t *testing.T) {
	token := Base64.Encode("Poll", "7")
	got, err := Base64.Decode(token)
	require.NoError(t, err)
	require.Equal(t, ID{ID: "7", Typename: "Poll"}, got)
}
