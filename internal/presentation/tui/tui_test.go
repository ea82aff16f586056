package tui

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/isoscene/pkg/adapters/memory"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	ctx := context.Background()
	e := editor.New(ctx, memory.NewStore())
	_, err := e.AddObject(ctx, domain.KindCube, domain.Vec3{})
	require.NoError(t, err)
	roof := e.AddLayer(ctx, "Roof")
	e.ToggleLayerVisibility(ctx, 1)

	md := Summary(e)
	assert.Contains(t, md, "# Scene")
	assert.Contains(t, md, "| Objects | 1 |")
	assert.Contains(t, md, "1. Default Layer, hidden, 1 objects")
	assert.Contains(t, md, "2. Roof, visible, 0 objects **(current)**")
	assert.Contains(t, md, "`"+string(domain.ActionToggleLayerVisibility)+"`")
	assert.Equal(t, 2, roof.ID)
}

func TestNewRenderer_PlainWhenNotATerminal(t *testing.T) {
	render := NewRenderer(nil)
	out, err := render("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestRenderStyled(t *testing.T) {
	out, err := RenderStyled("# Title\n\nbody", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
