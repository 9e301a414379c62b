package config

// RulesConfig holds defaults applied to new team matches.
type RulesConfig struct {
	DefaultMaxEncountersPerPlayer int  `env:"DEFAULT_MAX_ENCOUNTERS_PER_PLAYER" envDefault:"2"`
	AllowPairRepeat               bool `env:"ALLOW_PAIR_REPEAT" envDefault:"true"`
	TiebreakerIgnoresCap          bool `env:"TIEBREAKER_IGNORES_CAP" envDefault:"false"`
}
