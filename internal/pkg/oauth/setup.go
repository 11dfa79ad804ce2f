package oauth

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/cache"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/env"
)

// Setup registers the Goth providers and gives goth_fiber its own
// Redis-backed session store. Safe to call more than once, providers are
// simply re-registered.
func Setup() {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}

	goth.UseProviders(
		google.New(
			env.GetEnv("GOOGLE_KEY", ""),
			env.GetEnv("GOOGLE_SECRET", ""),
			base+"/auth/google/callback",
			"email", "profile",
		),
		facebook.New(
			env.GetEnv("FACEBOOK_KEY", ""),
			env.GetEnv("FACEBOOK_SECRET", ""),
			base+"/auth/facebook/callback",
			"email", "public_profile",
		),
		discord.New(
			env.GetEnv("DISCORD_KEY", ""),
			env.GetEnv("DISCORD_SECRET", ""),
			base+"/auth/discord/callback",
			discord.ScopeIdentify, discord.ScopeEmail,
		),
	)

	host, port := redisHostPort()

	// OAuth state lives in Redis DB 2, away from the app sessions, so
	// clearing one store cannot invalidate the other.
	gothfiber.SessionStore = session.New(session.Config{
		Storage: redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Username: cache.GetClient().Options().Username,
			Password: cache.GetClient().Options().Password,
			Database: 2,
			Reset:    false,
		}),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     72 * time.Hour,
	})
}

// redisHostPort splits the shared cache client's address for the fiber
// storage config, which wants host and port separately.
func redisHostPort() (string, int) {
	host, port := "127.0.0.1", 6379

	opts := cache.GetClient().Options()
	if opts == nil || opts.Addr == "" {
		return host, port
	}

	h, p, err := net.SplitHostPort(opts.Addr)
	if err != nil {
		return opts.Addr, port
	}

	host = h
	if parsed, err := strconv.Atoi(p); err == nil {
		port = parsed
	}
	return host, port
}
