package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// SessionCookiePrefix prefixes the per-link session cookie name.
const SessionCookiePrefix = "lg_session_"

// SessionConfig конфигурация подписи сессий
type SessionConfig struct {
	SecretKey []byte
	TTL       time.Duration
	Issuer    string
}

// SessionClaims binds a password session to exactly one link.
type SessionClaims struct {
	LinkID int64 `json:"link_id"`
	jwt.RegisteredClaims
}

// SessionService issues and verifies signed password-gate sessions.
type SessionService struct {
	config *SessionConfig
	now    func() time.Time
}

// NewSessionService создает новый сервис сессий
func NewSessionService(config *SessionConfig) *SessionService {
	return &SessionService{
		config: config,
		now:    time.Now,
	}
}

// CookieName returns the cookie that carries the session for linkID.
func CookieName(linkID int64) string {
	return SessionCookiePrefix + strconv.FormatInt(linkID, 10)
}

// IssueSession creates a token valid for the configured TTL (absolute, not sliding).
func (s *SessionService) IssueSession(linkID int64) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.TTL)
	claims := SessionClaims{
		LinkID: linkID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(linkID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.config.SecretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseSession validates signature and expiry and returns the claims.
func (s *SessionService) ParseSession(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.config.SecretKey, nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// VerifySession reports whether token is a valid, unexpired session for linkID.
func (s *SessionService) VerifySession(tokenString string, linkID int64) bool {
	if tokenString == "" {
		return false
	}
	claims, err := s.ParseSession(tokenString)
	if err != nil {
		return false
	}
	return claims.LinkID == linkID
}
