package config

type HTTP struct {
	Port    uint32 `env:"HTTP_PORT" envDefault:"8000"`
	Swagger bool   `env:"HTTP_SWAGGER" envDefault:"true"`

	// PublicURL is the externally reachable base URL advertised in the
	// generated OpenAPI document.
	PublicURL          string   `env:"HTTP_PUBLIC_URL" envDefault:"http://localhost:8000"`
	CorsAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}
