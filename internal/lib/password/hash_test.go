package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompare(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"Обычный пароль", "password123"},
		{"Пароль со спецсимволами", "p@ssw0rd!@#$%^&*()"},
		{"Длинный пароль", "verylongpasswordwithmorethanfiftycharacters"},
		{"Короткий пароль", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			assert.NoError(t, CompareHash(hash, tt.password))
		})
	}
}

func TestCompareHash_Mismatch(t *testing.T) {
	hash, err := GetHash("correct_password")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
	}{
		{"Неверный пароль", "wrong_password"},
		{"Пустой пароль", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, CompareHash(hash, tt.password))
		})
	}
}

func TestGetHash_Salted(t *testing.T) {
	first, err := GetHash("same_password")
	require.NoError(t, err)
	second, err := GetHash("same_password")
	require.NoError(t, err)

	// bcrypt солит каждый хэш, повторы не совпадают.
	assert.NotEqual(t, first, second)
}
