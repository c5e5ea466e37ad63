package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	jwt "github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("ADMIN_JWT_SECRET"))
}

// GenerateAdminToken issues a JWT for an admin actor. The admin CLI uses it
// to mint tokens for the moderation dashboard.
func GenerateAdminToken(adminID string) (string, error) {
	claims := jwt.MapClaims{
		"admin_id": adminID,
		"role":     "admin",
		"exp":      time.Now().Add(time.Hour * 72).Unix(),
		"iss":      "weddinggo-enforcement",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// GeneratePipelineToken issues a JWT for a trusted internal service, such as
// the message pipeline or the booking flow. Only holders of this token may
// write to the violation ledger.
func GeneratePipelineToken(serviceID string) (string, error) {
	claims := jwt.MapClaims{
		"service_id": serviceID,
		"role":       "pipeline",
		"exp":        time.Now().Add(time.Hour * 72).Unix(),
		"iss":        "weddinggo-enforcement",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// GenerateAccountToken issues a JWT identifying a marketplace account for
// the owner-scoped endpoints.
func GenerateAccountToken(accountID string) (string, error) {
	claims := jwt.MapClaims{
		"account_id": accountID,
		"role":       "account",
		"exp":        time.Now().Add(time.Hour * 72).Unix(),
		"iss":        "weddinggo-enforcement",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// bearerClaims extracts and validates the bearer token, returning its claims.
// It aborts the request with 401 on any failure.
func bearerClaims(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return nil, false
	}
	tokenString := authHeader[7:]

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return nil, false
	}
	return claims, true
}

// AdminAuth guards the admin route group. It validates the bearer token and
// exposes the admin identity to downstream handlers.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}
		if claims["role"] != "admin" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin role required"})
			return
		}

		adminID, _ := claims["admin_id"].(string)
		if adminID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin identity missing"})
			return
		}
		c.Set("admin_id", adminID)
		c.Next()
	}
}

// PipelineAuth guards the ledger write path. Only the engine's trusted
// execution context (message pipeline, booking flow) holds a pipeline token;
// account owners have no write access to the ledger at all.
func PipelineAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}
		if claims["role"] != "pipeline" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Service credential required"})
			return
		}

		serviceID, _ := claims["service_id"].(string)
		if serviceID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Service identity missing"})
			return
		}
		c.Set("service_id", serviceID)
		c.Next()
	}
}

// OwnerAuth guards the owner-scoped account endpoints. The authenticated
// account must match the :id path parameter: owners see their own history
// and file their own appeals, nobody else's.
func OwnerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}
		if claims["role"] != "account" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account credential required"})
			return
		}

		accountID, _ := claims["account_id"].(string)
		if accountID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account identity missing"})
			return
		}
		if accountID != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access to another account denied"})
			return
		}
		c.Set("account_id", accountID)
		c.Next()
	}
}
