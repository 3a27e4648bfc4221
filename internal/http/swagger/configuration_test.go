package swagger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/quickstore/internal/config"
	"github.com/tuanvumaihuynh/quickstore/internal/http/swagger"
)

func TestDefaultConfiguration(t *testing.T) {
	cfg := swagger.DefaultConfiguration()

	assert.Equal(t, "./apispec.json", cfg.SpecURL)
	assert.Equal(t, "swagger-ui", cfg.MountID)
	assert.True(t, cfg.DeepLinking)
	assert.Equal(t, []swagger.Preset{swagger.PresetAPIs, swagger.PresetStandalone}, cfg.Presets)
	assert.Equal(t, "BaseLayout", cfg.Layout)
}

func TestNewConfiguration(t *testing.T) {
	base := config.Docs{
		SpecURL:     "./apispec.json",
		MountID:     "swagger-ui",
		DeepLinking: true,
		Presets:     []string{"apis", "standalone"},
		Layout:      "BaseLayout",
	}

	t.Run("Should match the default configuration", func(t *testing.T) {
		cfg, err := swagger.NewConfiguration(base)
		require.NoError(t, err)
		assert.Equal(t, swagger.DefaultConfiguration(), cfg)
	})

	t.Run("Should normalize values", func(t *testing.T) {
		in := base
		in.MountID = "#docs"
		in.Presets = []string{" Standalone ", "", "APIS"}
		in.Layout = " StandaloneLayout "

		cfg, err := swagger.NewConfiguration(in)
		require.NoError(t, err)
		assert.Equal(t, "docs", cfg.MountID)
		assert.Equal(t, []swagger.Preset{swagger.PresetStandalone, swagger.PresetAPIs}, cfg.Presets)
		assert.Equal(t, "StandaloneLayout", cfg.Layout)
	})

	tests := []struct {
		name   string
		modify func(*config.Docs)
	}{
		{"unknown preset", func(c *config.Docs) { c.Presets = []string{"apis", "plugins"} }},
		{"no presets", func(c *config.Docs) { c.Presets = nil }},
		{"empty spec url", func(c *config.Docs) { c.SpecURL = " " }},
		{"empty mount id", func(c *config.Docs) { c.MountID = "#" }},
		{"empty layout", func(c *config.Docs) { c.Layout = "" }},
	}

	for _, tt := range tests {
		t.Run("Should reject "+tt.name, func(t *testing.T) {
			in := base
			tt.modify(&in)

			_, err := swagger.NewConfiguration(in)
			assert.Error(t, err)
		})
	}
}

func TestPreset(t *testing.T) {
	assert.Equal(t, "SwaggerUIBundle.presets.apis", swagger.PresetAPIs.Expression())
	assert.Equal(t, "SwaggerUIStandalonePreset", swagger.PresetStandalone.Expression())
	assert.NoError(t, swagger.PresetAPIs.Validate())
	assert.Error(t, swagger.Preset("DownloadUrl").Validate())
}
