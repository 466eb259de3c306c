// Package flash passes one-shot messages across a redirect in an HMAC
// signed cookie.
package flash

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "flash"
	ttl        = 5 * time.Minute
)

type Messenger struct {
	secretKey []byte
}

func NewMessenger(secretKey string) *Messenger {
	return &Messenger{secretKey: []byte(secretKey)}
}

// Encode signs msg into a token.
func (m *Messenger) Encode(msg string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"msg": msg,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign flash message: %w", err)
	}
	return signed, nil
}

// Decode verifies a token produced by Encode and returns its message.
func (m *Messenger) Decode(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse flash message: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid flash message")
	}
	msg, ok := claims["msg"].(string)
	if !ok {
		return "", errors.New("flash message has no text")
	}
	return msg, nil
}

// Set attaches msg to the response.
func (m *Messenger) Set(w http.ResponseWriter, msg string) error {
	value, err := m.Encode(msg)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop reads and clears the pending message. Missing, expired or forged
// cookies yield the empty string.
func (m *Messenger) Pop(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
	msg, err := m.Decode(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}
