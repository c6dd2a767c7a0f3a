package core

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/satlayer/satlayer-api/logger"
)

var C Config
var L logger.Logger
var P *ParamStore
var S Store

// init initializes the package by loading configuration from env.toml and setting up the logger.
//
// The config path can be overridden with the ENV_FILE environment variable.
// A missing file falls back to defaults so the package stays importable from tests.
func init() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = "env.toml"
	}
	if _, err := toml.DecodeFile(envFile, &C); err != nil {
		fmt.Printf("config %s not loaded, using defaults: %s\n", envFile, err)
		C = DefaultConfig()
	}
	C.Params = C.Params.withDefaults()
	L = logger.NewELKLogger("counter_oracle_bvs")
	P = NewParamStore(C.Params)
}

// DefaultConfig returns the configuration used when no env.toml is present.
func DefaultConfig() Config {
	return Config{
		App: App{
			Env:  "dev",
			Host: "localhost:9090",
		},
		Database: Database{
			RedisHost: "localhost:6379",
		},
		Owner: Owner{
			KeyringBackend: "test",
			Bech32Prefix:   "bbn",
		},
		Params: Params{}.withDefaults(),
	}
}

// InitStore connects the global redis store. Called from main, not init,
// so packages importing core do not require a running redis.
func InitStore() {
	S = Store{RedisConn: initRedis(&C.Database)}
}
