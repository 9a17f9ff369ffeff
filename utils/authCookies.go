package utils

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

func SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	setCookie(c, accessCookie, accessToken, AccessTokenExpiry)
	setCookie(c, refreshCookie, refreshToken, RefreshTokenExpiry)
}

func setCookie(c *gin.Context, name, value string, expiry time.Duration) {
	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(name, value, int(expiry.Seconds()), "/", "", secure, true)
}

func ClearAuthCookies(c *gin.Context) {
	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(accessCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", secure, true)
}

// AccessTokenFrom returns the bearer token of the request, falling back to
// the access cookie set at login.
func AccessTokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	token, _ := c.Cookie(accessCookie)
	return token
}

// RefreshTokenFrom returns the refresh token from the cookie or the given
// fallback.
func RefreshTokenFrom(c *gin.Context, fallback string) string {
	if fallback != "" {
		return fallback
	}
	token, _ := c.Cookie(refreshCookie)
	return token
}
