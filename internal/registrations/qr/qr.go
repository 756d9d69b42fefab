package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrInvalidCode = errors.New("invalid confirmation code")

// Payload is what a confirmation QR carries: enough to check an attendee in
// at the door without a lookup by email.
type Payload struct {
	RegistrationID string    `json:"registration_id"`
	EventID        string    `json:"event_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	IssuedAt       time.Time `json:"issued_at"`
}

// Generator encrypts confirmation payloads and renders them as QR codes.
// The secret is normalized to a 32-byte AES key.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret))
	return &Generator{secret: hashed[:]}
}

// Encrypt serializes and AES-encrypts the payload into the string a QR
// carries.
func (g *Generator) Encrypt(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Garbage, truncated, or foreign-key input comes
// back as ErrInvalidCode.
func (g *Generator) Decrypt(encoded string) (*Payload, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCode
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, ErrInvalidCode
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ErrInvalidCode
	}
	if payload.RegistrationID == "" || payload.EventID == "" {
		return nil, ErrInvalidCode
	}
	return &payload, nil
}

// GenerateQR renders the encrypted payload as a scannable PNG.
func (g *Generator) GenerateQR(p Payload) ([]byte, error) {
	encrypted, err := g.Encrypt(p)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}
