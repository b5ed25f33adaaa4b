package config

const (
	defaultConfigPath     = "~/.config/blobmeta/config.toml"
	projectConfigName     = "blobmeta.toml"
	defaultFFProbeBinary  = "ffprobe"
	defaultTimeoutSeconds = 30
	defaultOutputFormat   = "json"
	defaultLogFormat      = "console"
	defaultLogLevel       = "warn"
)

// Output formats accepted by [output] format and the CLI --format flag.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatTable = "table"
)

// Default returns a Config populated with defaults. Every probe is enabled.
func Default() Config {
	return Config{
		Probes: Probes{
			Digest:         true,
			Images:         true,
			Media:          true,
			FFProbeBinary:  defaultFFProbeBinary,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
