package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	returnToCookie = "return_to"
	returnToMaxAge = 10 * time.Minute
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// SetSessionCookie emits "<name>=<id>; Path=/; HttpOnly; Secure; SameSite=Lax; Max-Age=<ttl>".
func SetSessionCookie(c *fiber.Ctx, cfg CookieConfig, sessionID string) {
	appendCookie(c, &http.Cookie{
		Name:     cfg.Name,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie emits the same cookie with Max-Age=0.
func ClearSessionCookie(c *fiber.Ctx, cfg CookieConfig) {
	appendCookie(c, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RememberReturnTo stores the page a guest asked for so login can send them back.
func RememberReturnTo(c *fiber.Ctx, target string, secure bool) {
	if !IsLocalPath(target) {
		return
	}
	appendCookie(c, &http.Cookie{
		Name:     returnToCookie,
		Value:    url.QueryEscape(target),
		Path:     "/",
		MaxAge:   int(returnToMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ConsumeReturnTo returns the remembered page, or fallback, and clears it.
func ConsumeReturnTo(c *fiber.Ctx, fallback string, secure bool) string {
	raw := c.Cookies(returnToCookie)
	if raw == "" {
		return fallback
	}
	appendCookie(c, &http.Cookie{
		Name:     returnToCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	target, err := url.QueryUnescape(raw)
	if err != nil || !IsLocalPath(target) {
		return fallback
	}
	return target
}

// IsLocalPath accepts only same-origin absolute paths.
func IsLocalPath(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	return !strings.ContainsAny(target, "\r\n")
}

// appendCookie bypasses c.Cookie, which cannot emit Max-Age=0.
func appendCookie(c *fiber.Ctx, cookie *http.Cookie) {
	c.Response().Header.Add(fiber.HeaderSetCookie, cookie.String())
}
