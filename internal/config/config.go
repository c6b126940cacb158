// Package config loads quizstake configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config holds the daemon configuration.
type Config struct {
	// Chain
	RPCURL        string `env:"QUIZSTAKE_RPC_URL,required"`
	ChainID       int64  `env:"QUIZSTAKE_CHAIN_ID,default=42220"`
	LedgerAddress string `env:"QUIZSTAKE_LEDGER_ADDRESS,required"`
	TokenAddress  string `env:"QUIZSTAKE_TOKEN_ADDRESS"`

	// Wallet. When PrivateKey is set a local signing wallet is used;
	// otherwise transactions are delegated to the node's managed account.
	PrivateKey      string `env:"QUIZSTAKE_PRIVATE_KEY"`
	WalletAddress   string `env:"QUIZSTAKE_WALLET_ADDRESS"`
	ConstrainedHost bool   `env:"QUIZSTAKE_CONSTRAINED_HOST,default=false"`

	// Attribution
	AttributionConsumer string `env:"QUIZSTAKE_ATTRIBUTION_CONSUMER,default=quizstake-app"`
	AttributionEndpoint string `env:"QUIZSTAKE_ATTRIBUTION_ENDPOINT"`

	// Question generation
	GeneratorEndpoint string `env:"QUIZSTAKE_GENERATOR_ENDPOINT"`
	GeneratorAPIKey   string `env:"QUIZSTAKE_GENERATOR_API_KEY"`

	// Service
	ListenAddr       string        `env:"QUIZSTAKE_LISTEN_ADDR,default=:8090"`
	RefreshInterval  time.Duration `env:"QUIZSTAKE_REFRESH_INTERVAL,default=30s"`
	StatusClearDelay time.Duration `env:"QUIZSTAKE_STATUS_CLEAR_DELAY,default=5s"`

	// Logging
	LogLevel  string `env:"QUIZSTAKE_LOG_LEVEL,default=info"`
	LogFormat string `env:"QUIZSTAKE_LOG_FORMAT,default=text"`
}

// Load decodes configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
