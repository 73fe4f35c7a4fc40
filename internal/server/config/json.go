package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/followhub/internal/flagx"
	"github.com/dmitrijs2005/followhub/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP        string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC        string          `json:"endpoint_addr_grpc"`
	StorageBackend          string          `json:"storage_backend"`
	DatabaseDSN             string          `json:"database_dsn"`
	SecretKey               string          `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	FeedPageSize            int             `json:"feed_page_size"`
	TxMaxAttempts           int             `json:"tx_max_attempts"`
	TxBaseBackoff           *timex.Duration `json:"tx_base_backoff"`
}

// parseJson overlays values from the file named by -c/-config, if any.
// An unreadable file or malformed JSON panics, as flag errors do.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFilePath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)

	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.FeedPageSize != 0 {
		config.FeedPageSize = c.FeedPageSize
	}
	if c.TxMaxAttempts != 0 {
		config.TxMaxAttempts = c.TxMaxAttempts
	}
	if c.TxBaseBackoff != nil {
		config.TxBaseBackoff = c.TxBaseBackoff.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
