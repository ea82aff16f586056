package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "isoscene API", doc.Info.Title)
	assert.NotNil(t, doc.Paths.Find("/workspaces/{ws}/state/{path}"))
	assert.NotNil(t, doc.Paths.Find("/workspaces/{ws}/events"))
}
