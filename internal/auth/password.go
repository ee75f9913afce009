package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost стандартная сложность bcrypt
	DefaultBcryptCost = 12
)

var (
	ErrInvalidPassword = errors.New("invalid password")
)

// PasswordService hashes and verifies link passwords with bcrypt
type PasswordService struct {
	cost int
}

// NewPasswordService создает новый сервис для работы с паролями
func NewPasswordService() *PasswordService {
	return &PasswordService{
		cost: DefaultBcryptCost,
	}
}

// NewPasswordServiceWithCost создает новый сервис с заданной сложностью
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{
		cost: cost,
	}
}

// HashPassword хеширует пароль с использованием bcrypt
func (s *PasswordService) HashPassword(password string) (string, error) {
	if err := IsValidPassword(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// Verify reports whether plaintext matches the stored hash. A malformed hash never matches.
func (s *PasswordService) Verify(plaintext, storedHash string) bool {
	if plaintext == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}

// IsValidPassword checks length bounds; bcrypt ignores input past 72 bytes.
func IsValidPassword(password string) error {
	if len(password) < 4 {
		return errors.Join(ErrInvalidPassword, errors.New("password must be at least 4 characters long"))
	}

	if len(password) > 72 {
		return errors.Join(ErrInvalidPassword, errors.New("password must be no more than 72 characters long"))
	}

	return nil
}
