package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/situacio-backend/internal/platform/ctxutil"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

const (
	HeaderLLMAPIKey         = "X-LLM-Api-Key"
	HeaderGoogleAccessToken = "X-Google-Access-Token"

	sessionIDKey = "session_id"
	issuer       = "situacio"
)

// SessionClaims binds a bearer token to one editing session.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type SessionAuth struct {
	log *logger.Logger
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessionAuth(log *logger.Logger, signingKey string, ttl time.Duration) (*SessionAuth, error) {
	if strings.TrimSpace(signingKey) == "" {
		return nil, fmt.Errorf("session signing key required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionAuth{
		log: log.With("Middleware", "SessionAuth"),
		key: []byte(signingKey),
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Issue signs a token for sessionID.
func (a *SessionAuth) Issue(sessionID string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates tokenString and returns its session id.
func (a *SessionAuth) Parse(tokenString string) (string, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	tok, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !tok.Valid || strings.TrimSpace(claims.SessionID) == "" {
		return "", errors.New("token carries no session")
	}
	return claims.SessionID, nil
}

// RequireSession rejects requests without a valid session token and stores the session
// id on the request context.
func (a *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		sid, err := a.Parse(tokenString)
		if err != nil {
			a.log.Debug("rejected session token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}
		c.Set(sessionIDKey, sid)
		c.Request = c.Request.WithContext(ctxutil.WithSessionID(c.Request.Context(), sid))
		c.Next()
	}
}

// extractToken also accepts ?token= because EventSource cannot set headers.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}
