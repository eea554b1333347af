package config

const (
	defaultLibraryDir   = "~/library"
	defaultLogDir       = "~/.local/share/shelver/logs"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultMinFreeBytes = 1 << 30 // 1 GiB
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Migration: Migration{
			MinFreeBytes: defaultMinFreeBytes,
		},
	}
}
