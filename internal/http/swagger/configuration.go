package swagger

import (
	"fmt"
	"strings"

	"github.com/tuanvumaihuynh/quickstore/internal/config"
	"github.com/tuanvumaihuynh/quickstore/pkg/validator"
)

// Preset is an opaque capability token of the Swagger UI bundle.
type Preset string

const (
	// PresetAPIs selects SwaggerUIBundle.presets.apis.
	PresetAPIs Preset = "apis"
	// PresetStandalone selects SwaggerUIStandalonePreset.
	PresetStandalone Preset = "standalone"
)

var presetExpressions = map[Preset]string{
	PresetAPIs:       "SwaggerUIBundle.presets.apis",
	PresetStandalone: "SwaggerUIStandalonePreset",
}

// Validate reports whether p is one of the known presets.
func (p Preset) Validate() error {
	if _, ok := presetExpressions[p]; !ok {
		return fmt.Errorf("unknown preset: %s", string(p))
	}
	return nil
}

// Expression returns the JavaScript expression the preset stands for.
func (p Preset) Expression() string {
	return presetExpressions[p]
}

// ViewerConfiguration is the record handed to the viewer factory.
type ViewerConfiguration struct {
	// SpecURL locates the API document, relative to the viewer page or absolute.
	SpecURL string `json:"specUrl" validate:"required"`
	// MountID is the id of the DOM element the viewer renders into.
	MountID     string   `json:"mountId" validate:"required"`
	DeepLinking bool     `json:"deepLinking"`
	Presets     []Preset `json:"presets" validate:"required,min=1,dive,enum"`
	Layout      string   `json:"layout" validate:"required"`
}

// DefaultConfiguration returns the configuration used when nothing is
// overridden.
func DefaultConfiguration() ViewerConfiguration {
	return ViewerConfiguration{
		SpecURL:     "./apispec.json",
		MountID:     "swagger-ui",
		DeepLinking: true,
		Presets:     []Preset{PresetAPIs, PresetStandalone},
		Layout:      "BaseLayout",
	}
}

// NewConfiguration builds and validates a ViewerConfiguration from the
// environment backed docs configuration.
func NewConfiguration(cfg config.Docs) (ViewerConfiguration, error) {
	presets := make([]Preset, 0, len(cfg.Presets))
	for _, name := range cfg.Presets {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		presets = append(presets, Preset(name))
	}

	vc := ViewerConfiguration{
		SpecURL:     strings.TrimSpace(cfg.SpecURL),
		MountID:     strings.TrimPrefix(strings.TrimSpace(cfg.MountID), "#"),
		DeepLinking: cfg.DeepLinking,
		Presets:     presets,
		Layout:      strings.TrimSpace(cfg.Layout),
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return ViewerConfiguration{}, fmt.Errorf("create validator: %w", err)
	}
	if err := v.Validate(vc); err != nil {
		return ViewerConfiguration{}, fmt.Errorf("validate viewer configuration: %w", err)
	}

	return vc, nil
}
