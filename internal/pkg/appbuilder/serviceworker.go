package appbuilder

import (
	"fmt"
	"strings"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
)

// serviceWorkerTemplate is the cache-first worker served at sw.js. The cache
// name embeds the app UUID and CacheVersion; bumping the version on publish
// invalidates every previously cached asset. OFFLINE_URL is null unless the
// app's plan includes the offline page; when set, failed navigations fall
// back to the precached offline page.
const serviceWorkerTemplate = `const CACHE_NAME = '%s';
const PRECACHE_URLS = [%s];
const OFFLINE_URL = %s;

self.addEventListener('install', (event) => {
  event.waitUntil(
    caches.open(CACHE_NAME).then((cache) => cache.addAll(PRECACHE_URLS))
  );
  self.skipWaiting();
});

self.addEventListener('activate', (event) => {
  event.waitUntil(
    caches.keys().then((names) =>
      Promise.all(
        names.filter((name) => name !== CACHE_NAME).map((name) => caches.delete(name))
      )
    )
  );
  self.clients.claim();
});

self.addEventListener('fetch', (event) => {
  if (event.request.method !== 'GET') {
    return;
  }
  event.respondWith(
    caches.match(event.request).then((cached) => {
      if (cached) {
        return cached;
      }
      return fetch(event.request).then((response) => {
        if (response.ok && response.type === 'basic') {
          const copy = response.clone();
          caches.open(CACHE_NAME).then((cache) => cache.put(event.request, copy));
        }
        return response;
      }).catch((err) => {
        if (OFFLINE_URL && event.request.mode === 'navigate') {
          return caches.match(OFFLINE_URL);
        }
        throw err;
      });
    })
  );
});
`

// CacheName returns the versioned cache identifier for an app.
func CacheName(app *models.PwaApp) string {
	return fmt.Sprintf("aslp-%s-v%d", app.AppUUID, app.CacheVersion)
}

// OfflinePath returns the offline fallback URL inside an app's scope.
func OfflinePath(app *models.PwaApp) string {
	return fmt.Sprintf("/a/%s/offline", app.AppUUID)
}

// BuildServiceWorker renders the service worker script for one app. The
// offline fallback is only emitted when the app's effective features include
// it.
func BuildServiceWorker(app *models.PwaApp, features entitlements.FeatureSet) []byte {
	scope := fmt.Sprintf("/a/%s/", app.AppUUID)

	precache := []string{
		quoteJS(scope),
		quoteJS(scope + "manifest.json"),
	}
	for _, icon := range app.Icons {
		precache = append(precache, quoteJS(icon.Path))
	}

	offlineURL := "null"
	if features.Has(entitlements.FeatureOfflinePage) {
		offlineURL = quoteJS(OfflinePath(app))
		precache = append(precache, offlineURL)
	}

	script := fmt.Sprintf(serviceWorkerTemplate, CacheName(app), strings.Join(precache, ", "), offlineURL)
	return []byte(script)
}

func quoteJS(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
