package util

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"girlmath-server/src/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "session"
	FlashCookieName   = "flash"

	issuer        = "girlmath"
	sessionAud    = "session"
	flashAud      = "flash"
	flashLifetime = 5 * time.Minute
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

var ErrNoSession = errors.New("no session")

type SessionClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type flashClaims struct {
	Flash
	jwt.RegisteredClaims
}

// Sessions issues and verifies the HS256-signed cookies that carry the
// session identity and one-shot flash messages.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue signs a session token for user and sets it as the session cookie.
func (s *Sessions) Issue(w http.ResponseWriter, user *models.User) error {
	now := time.Now()
	claims := SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			Audience:  jwt.ClaimStrings{sessionAud},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}
	s.setCookie(w, SessionCookieName, token, int(s.ttl.Seconds()))
	return nil
}

// Identity returns the identity carried by the request's session cookie.
func (s *Sessions) Identity(r *http.Request) (*models.Identity, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	var claims SessionClaims
	if err := s.parse(cookie.Value, sessionAud, &claims); err != nil {
		return nil, err
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("invalid session claims")
	}
	return &models.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func (s *Sessions) Clear(w http.ResponseWriter) {
	s.setCookie(w, SessionCookieName, "", -1)
}

// SetFlash stores a message to be shown on the next rendered page.
func (s *Sessions) SetFlash(w http.ResponseWriter, kind, message string) {
	now := time.Now()
	claims := flashClaims{
		Flash: Flash{Kind: kind, Message: message},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{flashAud},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashLifetime)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return
	}
	s.setCookie(w, FlashCookieName, token, int(flashLifetime.Seconds()))
}

// PopFlash returns the pending flash message, if any, and clears it.
func (s *Sessions) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	s.setCookie(w, FlashCookieName, "", -1)

	var claims flashClaims
	if err := s.parse(cookie.Value, flashAud, &claims); err != nil {
		return nil
	}
	return &claims.Flash
}

func (s *Sessions) parse(tokenString, audience string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
	)
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

func (s *Sessions) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Secure reports whether cookies are marked Secure.
func (s *Sessions) Secure() bool {
	return s.secure
}
