package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the session cookie set after a successful sign-in.
const CookieName = "auth_token"

// SessionCookie builds the session cookie carrying the signed token.
// Production uses SameSite=None with Secure so the cookie survives
// cross-site redirects from the hosted frontend.
func SessionCookie(token string, production bool) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if production {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(SessionDuration),
		HTTPOnly: true,
		Secure:   production,
		SameSite: sameSite,
	}
}

// ClearSessionCookie builds an expired cookie that removes the session.
func ClearSessionCookie(production bool) *fiber.Cookie {
	c := SessionCookie("", production)
	c.Expires = time.Now().Add(-time.Hour)
	return c
}
