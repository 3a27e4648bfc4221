package config

type Collections struct {
	File string `env:"COLLECTIONS_FILE" envDefault:"./config.json"`
}
