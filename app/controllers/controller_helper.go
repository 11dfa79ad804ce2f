package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/usercontext"
)

// jsonError writes the uniform error envelope used by all JSON endpoints.
func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// requestSettings returns the settings snapshot taken for this request so
// feature decisions stay consistent even if an admin saves mid-flight.
func requestSettings(c *fiber.Ctx) models.SettingsSnapshot {
	if snap, ok := c.Locals("SETTINGS_SNAPSHOT").(models.SettingsSnapshot); ok {
		return snap
	}
	return models.CurrentSnapshot()
}

// currentUserID returns the authenticated user id, or 0 for anonymous.
func currentUserID(c *fiber.Ctx) uint {
	return usercontext.GetUserID(c)
}

// GetClientIP resolves the client's IPv4 and IPv6 addresses, looking through
// the usual proxy headers (Cloudflare, X-Forwarded-For, X-Real-IP) before
// trusting the socket address. Either return value may be empty.
func GetClientIP(c *fiber.Ctx) (string, string) {
	forwarded := splitForwarded(c.Get("X-Forwarded-For"))

	// Cloudflare puts the original client address in its own header.
	if cfIP := c.Get("CF-Connecting-IP"); cfIP != "" {
		if isIPv6(cfIP) {
			return pickFamily(forwarded, false), cfIP
		}
		return cfIP, pickFamily(forwarded, true)
	}

	if len(forwarded) > 0 {
		// First entry is the original client; scan the rest for the other
		// address family.
		client := forwarded[0]
		if isIPv6(client) {
			return pickFamily(forwarded[1:], false), client
		}
		return client, pickFamily(forwarded[1:], true)
	}

	return fromSocket(c)
}

func fromSocket(c *fiber.Ctx) (string, string) {
	addr := c.IP()
	realIP := c.Get("X-Real-IP")

	if !isIPv6(addr) {
		if isIPv6(realIP) {
			return addr, realIP
		}
		return addr, ""
	}

	// IPv4-mapped IPv6 (::ffff:a.b.c.d) is really an IPv4 client.
	if strings.HasPrefix(addr, "::ffff:") && strings.Contains(addr, ".") {
		if isIPv6(realIP) {
			return strings.TrimPrefix(addr, "::ffff:"), realIP
		}
		return strings.TrimPrefix(addr, "::ffff:"), ""
	}

	if realIP != "" && !isIPv6(realIP) {
		return realIP, addr
	}
	return "", addr
}

func splitForwarded(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if ip := strings.TrimSpace(p); ip != "" {
			out = append(out, ip)
		}
	}
	return out
}

// pickFamily returns the first address of the requested family, empty when
// none is present.
func pickFamily(ips []string, wantV6 bool) string {
	for _, ip := range ips {
		if isIPv6(ip) == wantV6 {
			return ip
		}
	}
	return ""
}

func isIPv6(ip string) bool {
	return strings.Contains(ip, ":")
}
