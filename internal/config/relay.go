package config

import "time"

type Relay struct {
	BatchSize uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval  time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`
	// BatchTimeout bounds one poll, produce and mark round.
	BatchTimeout time.Duration `env:"RELAY_BATCH_TIMEOUT" envDefault:"30s"`
}
