package config

// Default configuration values.
const (
	// DefaultConfigFile is looked up in the working directory and
	// $HOME/.provsync when --config is not given.
	DefaultConfigFile = "provsync.ini"

	DefaultOutput    = "auto" // auto-detect: TTY=table, non-TTY=csv
	DefaultSSO       = "yes"
	DefaultPattern   = "*.csv"
	DefaultBatchSize = 50000
	DefaultEncoding  = "utf-8"
	DefaultTinColumn = "PROVIDERTIN"
)
