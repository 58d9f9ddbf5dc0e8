package jwtmw

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextUserID は認証済みユーザーIDを格納するGinコンテキストのキーです。
	ContextUserID = "userID"

	// EnvKeyJWTSecret は署名検証に使うシークレットの環境変数名です。
	EnvKeyJWTSecret = "JWT_SECRET"
)

// AuthRequired はJWTトークンを検証し、認証済みユーザーのみ通過させる
// Ginミドルウェアを返します。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorizationヘッダーを取得
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. 環境変数からシークレットを取得
		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			// サーバーの設定不備（JWT_SECRET未設定）
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 3. JWT署名を検証（HMAC系アルゴリズムのみ許可）
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 4. クレームからユーザーIDを取り出してコンテキストに設定
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(float64); ok { // JWTの数値はfloat64でデコードされる
				c.Set(ContextUserID, uint(sub))
			}
		}
		c.Next()
	}
}
