package aigateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AIInteraction{}))
	return NewService(repository.NewAIRepository(db)), db
}

func aiSettings(endpoint string) models.SettingsSnapshot {
	return models.SettingsSnapshot{AIEnabled: true, AIEndpoint: endpoint, AIAPIKey: "test-key"}
}

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerate(t *testing.T) {
	var captured struct {
		key  string
		body generateRequest
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.key = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(candidateResponse("Fresh roasted coffee, daily.")))
	}))
	defer server.Close()

	svc, db := newTestService(t)

	text, err := svc.Generate(context.Background(), aiSettings(server.URL), 7, models.AIKindContent, "Write a tagline for a coffee shop")
	require.NoError(t, err)
	assert.Equal(t, "Fresh roasted coffee, daily.", text)

	// The API key travels as a query parameter, the prompt as a single user turn.
	assert.Equal(t, "test-key", captured.key)
	require.Len(t, captured.body.Contents, 1)
	assert.Equal(t, "user", captured.body.Contents[0].Role)
	require.Len(t, captured.body.Contents[0].Parts, 1)
	assert.Equal(t, "Write a tagline for a coffee shop", captured.body.Contents[0].Parts[0].Text)

	// Every successful call leaves an audit row.
	var interactions []models.AIInteraction
	require.NoError(t, db.Find(&interactions).Error)
	require.Len(t, interactions, 1)
	assert.Equal(t, uint(7), interactions[0].UserID)
	assert.Equal(t, models.AIKindContent, interactions[0].Kind)
	assert.Equal(t, "Fresh roasted coffee, daily.", interactions[0].Response)
}

func TestGenerateProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	svc, db := newTestService(t)

	_, err := svc.Generate(context.Background(), aiSettings(server.URL), 1, models.AIKindContent, "hello")
	require.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "quota exceeded")

	// Failed calls are not audited.
	var count int64
	require.NoError(t, db.Model(&models.AIInteraction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGenerateBadShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	svc, _ := newTestService(t)
	_, err := svc.Generate(context.Background(), aiSettings(server.URL), 1, models.AIKindContent, "hello")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestGenerateGuards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, models.SettingsSnapshot{}, 1, models.AIKindContent, "hello")
	assert.ErrorIs(t, err, ErrFeatureDisabled)

	_, err = svc.Generate(ctx, models.SettingsSnapshot{AIEnabled: true}, 1, models.AIKindContent, "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = svc.Generate(ctx, aiSettings("http://localhost:1"), 1, models.AIKindContent, "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestGenerateSEO(t *testing.T) {
	var gotConfig *generationConfig
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotConfig = req.GenerationConfig
		w.Write([]byte(candidateResponse(`{"title":"Blue Bottle Cafe","meta_description":"Coffee in Midtown.","keywords":["coffee","cafe"]}`)))
	}))
	defer server.Close()

	svc, _ := newTestService(t)

	suggestion, err := svc.GenerateSEO(context.Background(), aiSettings(server.URL), 3, "Blue Bottle Cafe", "A coffee shop in Midtown")
	require.NoError(t, err)
	assert.Equal(t, "Blue Bottle Cafe", suggestion.Title)
	assert.Equal(t, "Coffee in Midtown.", suggestion.MetaDescription)
	assert.Equal(t, []string{"coffee", "cafe"}, suggestion.Keywords)

	require.NotNil(t, gotConfig)
	assert.Equal(t, "application/json", gotConfig.ResponseMimeType)
	assert.NotEmpty(t, gotConfig.ResponseSchema)
}
