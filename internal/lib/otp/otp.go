// Package otp генерирует одноразовые коды подтверждения почты
// и случайные токены для сброса пароля.
package otp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateCode возвращает шестизначный числовой код.
func GenerateCode() (string, error) {
	const op = "otp.GenerateCode"
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateToken возвращает случайный hex-токен длиной 64 символа.
// Используется для ссылок подтверждения почты и сброса пароля.
func GenerateToken() (string, error) {
	const op = "otp.GenerateToken"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
