package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	for _, path := range []string{
		"/health/live",
		"/health/ready",
		"/events/random",
		"/events/by-title",
		"/admin/events",
		"/admin/events/{id}/audit",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "path %s", path)
	}

	create := doc.Paths.Find("/admin/events").Post
	require.NotNil(t, create)
	assert.Equal(t, "createEvent", create.OperationID)
	assert.NotNil(t, create.Responses.Status(201))
}

func TestSpecEmbedded(t *testing.T) {
	assert.Contains(t, string(Spec()), "openapi: 3.0.3")
}
