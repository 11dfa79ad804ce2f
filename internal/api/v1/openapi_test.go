package apiv1

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The published contract must stay a valid OpenAPI 3 document and keep
// covering every route RegisterHandlers exposes.
func TestOpenAPIDocumentMatchesRoutes(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)
	require.NoError(t, doc.Validate(loader.Context))

	for _, path := range []string{
		"/ping",
		"/profile",
		"/listings",
		"/listings/{id}/stats",
		"/ai/generate",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}
}
