package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	"tipsy/backend/internal/auth"
	"tipsy/backend/internal/config"
	"tipsy/backend/internal/models"
	"tipsy/backend/internal/store"
)

// Context keys set by RequireAuth.
const (
	ctxUserID = "user_id"
	ctxAnonID = "anon_id"
	ctxRole   = "role"
)

// generateJWT issues the session token carrying the real id, the
// anonymous display id and the role.
func (h *Handler) generateJWT(u models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"anon_id": u.AnonymousID,
		"role":    string(u.Role),
		"exp":     time.Now().Add(config.TokenTTL).Unix(),
		"iss":     "tipsy-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

func (h *Handler) parseJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// bearerToken pulls the token from the Authorization header, falling
// back to the query string for websocket upgrades from browsers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// RequireAuth validates the session token and stashes the identity in
// the request context.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "authorization token missing"})
			return
		}

		claims, err := h.parseJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid or expired token"})
			return
		}

		userID, _ := claims["user_id"].(string)
		anonID, _ := claims["anon_id"].(string)
		role, _ := claims["role"].(string)
		if anonID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid token claims"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxAnonID, anonID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireAdmin gates triage-only routes.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != string(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "admin only"})
			return
		}
		c.Next()
	}
}

// identity rebuilds the acting identity from the validated claims.
func (h *Handler) identity(c *gin.Context) store.Identity {
	return store.Identity{
		UserID:      c.GetString(ctxUserID),
		AnonymousID: c.GetString(ctxAnonID),
	}
}

// Login checks credentials and returns a session token.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid credentials"})
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": publicUser(user)})
}

// RegisterUser creates an employee account. A taken email is a
// rejection, not a fault.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := h.Auth.Register(req.Email, req.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"err": "email already registered"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": publicUser(user)})
}

// Logout clears the process-local session. The token itself simply
// expires; there is no revocation list in this prototype.
func (h *Handler) Logout(c *gin.Context) {
	h.Auth.Logout()
	c.Status(http.StatusNoContent)
}

// Me returns the caller's own account.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Auth.UserByID(c.GetString(ctxUserID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
		return
	}
	c.JSON(http.StatusOK, publicUser(user))
}

// publicUser strips the credential secret from API responses.
func publicUser(u models.User) gin.H {
	out := gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"role":        u.Role,
		"anonymousId": u.AnonymousID,
	}
	if u.Reputation != nil {
		out["reputation"] = *u.Reputation
	}
	return out
}
