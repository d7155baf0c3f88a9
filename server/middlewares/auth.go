package middlewares

import (
	"context"
	"strings"

	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/fragrancepalette/backend/internal/db"
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/fragrancepalette/backend/server/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

type userClaims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// SignToken issues the bearer token handed out by register/login.
func SignToken(secret string, userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, userClaims{UserID: userID})
	signed, err := token.SignedString([]byte(secret))
	return signed, errors.WithStack(err)
}

// Auth verifies the bearer token and resolves the user from the primary
// database, then stores it on the request context under conf.UserKey.
func Auth(secret string, database *db.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" {
			common.ErrorStrResp(c, "No token provided", 401)
			c.Abort()
			return
		}
		claims := &userClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			common.ErrorStrResp(c, "Invalid token", 401)
			c.Abort()
			return
		}
		user, err := database.GetUserByID(claims.UserID)
		if err != nil {
			common.ErrorStrResp(c, "Invalid token", 401)
			c.Abort()
			return
		}
		ctx := context.WithValue(c.Request.Context(), conf.UserKey, user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserFromContext extracts the authenticated user placed by Auth.
func UserFromContext(c *gin.Context) (*model.User, bool) {
	user, ok := c.Request.Context().Value(conf.UserKey).(*model.User)
	return user, ok
}
