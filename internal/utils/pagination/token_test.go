package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	occurredAt := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(occurredAt, createdAt)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedOccurredAt, decodedCreatedAt, err := DecodeToken(token)
	assert.NoError(t, err)
	assert.True(t, occurredAt.Equal(decodedOccurredAt), "Occurred-at should round-trip")
	assert.True(t, createdAt.Equal(decodedCreatedAt), "Created-at should round-trip")
}

func TestDecodeToken_Invalid(t *testing.T) {
	_, _, err := DecodeToken("not-base64!!!")
	assert.Error(t, err)

	_, _, err = DecodeToken("aGVsbG8=") // "hello": valid base64, no separator
	assert.Error(t, err)
}

func TestEncodeDecodeDateBasedToken(t *testing.T) {
	date := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	token := EncodeDateBasedToken(date)
	assert.NotEmpty(t, token)

	decoded, err := DecodeDateBasedToken(token)
	assert.NoError(t, err)
	assert.True(t, date.Equal(decoded))
}

func TestDecodeDateBasedToken_Invalid(t *testing.T) {
	_, err := DecodeDateBasedToken("%%%")
	assert.Error(t, err)
}
