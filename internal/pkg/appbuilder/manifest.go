package appbuilder

import (
	"encoding/json"
	"fmt"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

// ManifestIcon is one icon entry of the web app manifest.
type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// Manifest is the W3C web app manifest generated for a published app.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name,omitempty"`
	Description     string         `json:"description,omitempty"`
	StartURL        string         `json:"start_url"`
	Scope           string         `json:"scope"`
	Display         string         `json:"display"`
	ThemeColor      string         `json:"theme_color,omitempty"`
	BackgroundColor string         `json:"background_color,omitempty"`
	Icons           []ManifestIcon `json:"icons"`
}

// BuildManifest renders the manifest for one app. The scope is pinned to the
// app's public path so two apps on the same origin never share a worker.
func BuildManifest(app *models.PwaApp) *Manifest {
	scope := fmt.Sprintf("/a/%s/", app.AppUUID)

	startURL := app.StartURL
	if startURL == "" || startURL == "/" {
		startURL = scope
	}

	display := app.Display
	if display == "" {
		display = models.DisplayStandalone
	}

	m := &Manifest{
		Name:            app.Name,
		ShortName:       app.ShortName,
		Description:     app.Description,
		StartURL:        startURL,
		Scope:           scope,
		Display:         display,
		ThemeColor:      app.ThemeColor,
		BackgroundColor: app.BackgroundColor,
		Icons:           make([]ManifestIcon, 0, len(app.Icons)),
	}
	for _, icon := range app.Icons {
		m.Icons = append(m.Icons, ManifestIcon{
			Src:     icon.Path,
			Sizes:   icon.Sizes,
			Type:    icon.Type,
			Purpose: icon.Purpose,
		})
	}
	return m
}

// ManifestJSON renders the manifest as the bytes served at manifest.json.
func ManifestJSON(app *models.PwaApp) ([]byte, error) {
	data, err := json.MarshalIndent(BuildManifest(app), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest for app %s: %w", app.AppUUID, err)
	}
	return data, nil
}
