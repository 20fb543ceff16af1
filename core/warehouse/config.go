package warehouse

// Config holds configuration for the analytical store connection.
type Config struct {
	// Addr is the ClickHouse native endpoint (host:port).
	Addr string `mapstructure:"addr" default:"localhost:9000"`
	// Database is the ClickHouse database name.
	Database string `mapstructure:"database" default:"mediation"`
	// User is the ClickHouse user.
	User string `mapstructure:"user" default:"default"`
	// Password is the ClickHouse password.
	Password string `mapstructure:"password" default:""`
	// DialTimeoutSeconds is the connection setup timeout in seconds.
	DialTimeoutSeconds int `mapstructure:"dial_timeout_seconds" default:"5"`
	// MaxExecutionSeconds caps query execution time server-side.
	MaxExecutionSeconds int `mapstructure:"max_execution_seconds" default:"60"`
}
