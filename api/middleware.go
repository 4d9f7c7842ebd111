package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"tasty-canteen/services"
)

const (
	sessionHeader = "X-Session-ID"
	ctxSession    = "session"
	ctxUser       = "user"
)

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", sessionHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// sessionMiddleware resolves the session named by the X-Session-ID header.
// GET requests only look an existing session up; other methods open one.
func sessionMiddleware(sessions *services.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(sessionHeader))
		if key == "" {
			badRequest(c, "missing "+sessionHeader+" header")
			return
		}
		if c.Request.Method == http.MethodGet {
			if sess, ok := sessions.Get(key); ok {
				c.Set(ctxSession, sess)
			}
		} else {
			c.Set(ctxSession, sessions.Open(key))
		}
		c.Next()
	}
}

// authMiddleware verifies an optional bearer token. A valid token signs the
// request's session in as the token subject; an invalid one is rejected.
func authMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			unauthorized(c, "missing or invalid token")
			return
		}
		user, err := parseToken(strings.TrimPrefix(h, "Bearer "), secret)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		c.Set(ctxUser, user)
		if sess, ok := c.Get(ctxSession); ok {
			sess.(*services.Session).SignIn(user)
		}
		c.Next()
	}
}

// requireUser rejects requests without a verified identity.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUser); !ok {
			unauthorized(c, services.ErrNotSignedIn.Error())
			return
		}
		c.Next()
	}
}

func parseToken(tokenStr string, secret []byte) (services.User, error) {
	if len(secret) == 0 {
		return services.User{}, errors.New("token verification disabled")
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return services.User{}, err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return services.User{}, errors.New("token has no subject")
	}
	user := services.User{ID: sub}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if v, ok := claims["email"].(string); ok {
			user.Name = v
		}
		if v, ok := claims["phone"].(string); ok {
			user.Phone = v
		}
	}
	return user, nil
}

func sessionFrom(c *gin.Context) *services.Session {
	return c.MustGet(ctxSession).(*services.Session)
}

// lookupSession returns the request's session on routes that do not create one.
func lookupSession(c *gin.Context) (*services.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	return v.(*services.Session), true
}

func userFrom(c *gin.Context) services.User {
	return c.MustGet(ctxUser).(services.User)
}
