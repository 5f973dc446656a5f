package config

// DefaultBatchSize is the number of published rows per transaction.
const DefaultBatchSize = 5000

const (
	defaultConfigPath        = "~/.config/metmaster/config.toml"
	defaultSourceCSV         = "filtered_objects.csv"
	defaultImageCacheDB      = "image_cache.db"
	defaultOutputRoot        = "master"
	defaultStaleStagingHours = 24
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

const (
	envSourceCSV    = "METMASTER_SOURCE_CSV"
	envImageCacheDB = "METMASTER_IMAGE_CACHE_DB"
	envOutputRoot   = "METMASTER_OUTPUT_ROOT"
	envLogLevel     = "METMASTER_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults. Relative
// paths resolve against the working directory during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceCSV:    defaultSourceCSV,
			ImageCacheDB: defaultImageCacheDB,
			OutputRoot:   defaultOutputRoot,
		},
		Build: Build{
			BatchSize:         DefaultBatchSize,
			StaleStagingHours: defaultStaleStagingHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
