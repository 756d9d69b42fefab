package qr_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventar/internal/registrations/qr"
)

func payload() qr.Payload {
	return qr.Payload{
		RegistrationID: "r1",
		EventID:        "e1",
		Name:           "Sam Lee",
		Email:          "sam@example.com",
		IssuedAt:       time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	gen := qr.NewGenerator("test-secret")

	code, err := gen.Encrypt(payload())
	require.NoError(t, err)
	require.NotEmpty(t, code)

	got, err := gen.Decrypt(code)
	require.NoError(t, err)
	assert.Equal(t, "r1", got.RegistrationID)
	assert.Equal(t, "e1", got.EventID)
	assert.Equal(t, "sam@example.com", got.Email)
}

func TestDecryptGarbage(t *testing.T) {
	gen := qr.NewGenerator("test-secret")

	for _, input := range []string{"", "not base64 at all!!!", "YWJjZA=="} {
		_, err := gen.Decrypt(input)
		assert.ErrorIs(t, err, qr.ErrInvalidCode, "input %q", input)
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	code, err := qr.NewGenerator("key-a").Encrypt(payload())
	require.NoError(t, err)

	_, err = qr.NewGenerator("key-b").Decrypt(code)
	assert.ErrorIs(t, err, qr.ErrInvalidCode)
}

func TestGenerateQRIsPNG(t *testing.T) {
	gen := qr.NewGenerator("test-secret")

	png, err := gen.GenerateQR(payload())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
