package config

// Docs configures the embedded API documentation viewer.
type Docs struct {
	SpecURL     string   `env:"DOCS_SPEC_URL" envDefault:"./apispec.json"`
	MountID     string   `env:"DOCS_MOUNT_ID" envDefault:"swagger-ui"`
	DeepLinking bool     `env:"DOCS_DEEP_LINKING" envDefault:"true"`
	Presets     []string `env:"DOCS_PRESETS" envDefault:"apis,standalone" envSeparator:","`
	Layout      string   `env:"DOCS_LAYOUT" envDefault:"BaseLayout"`
	AssetsURL   string   `env:"DOCS_ASSETS_URL" envDefault:"https://unpkg.com/swagger-ui-dist@5.29.3"`
}
