package session

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/cache"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/env"
)

var sessionStore *session.Store

// NewSessionStore creates the app session store on top of the shared Redis
// connection. Sessions live in DB 1; the plain cache uses DB 0 and OAuth
// state uses DB 2.
func NewSessionStore() *session.Store {
	host, port := "localhost", 6379
	password := env.GetEnv("CACHE_PASSWORD", "")

	if client := cache.GetClient(); client != nil {
		if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})

	sessionStore = session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour,
		KeyLookup:      "cookie:session_id",
	})

	return sessionStore
}

// GetSessionStore returns the store created by NewSessionStore.
func GetSessionStore() *session.Store {
	return sessionStore
}

// GetSessionValue reads a string value from the request's session, empty
// when the store is uninitialized or the key is absent.
func GetSessionValue(c *fiber.Ctx, key string) string {
	if sessionStore == nil {
		return ""
	}

	sess, err := sessionStore.Get(c)
	if err != nil {
		return ""
	}

	if value, ok := sess.Get(key).(string); ok {
		return value
	}
	return ""
}
