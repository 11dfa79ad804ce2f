package appbuilder

import (
	"fmt"
	"html"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

const offlinePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="theme-color" content="%s">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; background: %s; color: #333; display: flex; min-height: 100vh; align-items: center; justify-content: center; margin: 0; }
main { text-align: center; padding: 2rem; }
h1 { font-size: 1.4rem; }
</style>
</head>
<body>
<main>
<h1>%s</h1>
<p>You are offline. This page will reload automatically once the connection returns.</p>
</main>
<script>window.addEventListener('online', () => window.location.reload());</script>
</body>
</html>
`

// BuildOfflinePage renders the precached fallback page the service worker
// serves when a navigation fails without a network.
func BuildOfflinePage(app *models.PwaApp) []byte {
	theme := app.ThemeColor
	if theme == "" {
		theme = "#ffffff"
	}
	background := app.BackgroundColor
	if background == "" {
		background = "#ffffff"
	}
	name := html.EscapeString(app.Name)

	page := fmt.Sprintf(offlinePageTemplate, theme, name, background, name)
	return []byte(page)
}
