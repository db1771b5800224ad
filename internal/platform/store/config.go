package store

import (
	"time"

	"mywallet/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Boot knobs; zero means the defaults in openers.go
	ConnectRetries int
	PingTimeout    time.Duration
}

// PGFromConf reads a PGConfig from a prefixed view (SERVICE_PGSQL_* in the binaries)
// The backend is enabled only when DBURL is set
func PGFromConf(c config.Conf) PGConfig {
	url := c.MayString("DBURL", "")
	return PGConfig{
		Enabled:        url != "",
		URL:            url,
		MaxConns:       int32(c.MayInt("MAX_CONNS", 4)),
		SlowQueryMs:    c.MayInt("SLOW_MS", 500),
		LogSQL:         c.MayBool("LOG_SQL", false),
		ConnectRetries: c.MayInt("CONNECT_RETRIES", 0),
		PingTimeout:    c.MayDuration("PING_TIMEOUT", 0),
	}
}
