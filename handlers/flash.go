package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	flashCookie  = "flash"
	flashSuccess = "success"
	flashError   = "error"
)

type flashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func setFlash(c *fiber.Ctx, kind, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + ":" + message),
		Path:     "/",
		Expires:  time.Now().Add(time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// popFlash reads and clears the pending flash message, if any.
func popFlash(c *fiber.Ctx) *flashMessage {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.ClearCookie(flashCookie)

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(decoded, ":")
	if !ok {
		return nil
	}
	return &flashMessage{Kind: kind, Message: message}
}

func withFlash(c *fiber.Ctx, body fiber.Map) fiber.Map {
	if f := popFlash(c); f != nil {
		body["flash"] = f
	}
	return body
}
