package config

const (
	defaultAPIBaseURL           = "http://localhost:8000/api"
	defaultUploadTimeoutSeconds = 120
	defaultLookupTimeoutSeconds = 15
	defaultStateDir             = "~/.local/state/agora"
	defaultExportDir            = "~/Documentos/agora"
	defaultLogDir               = "~/.local/state/agora/logs"
	defaultMaxFiles             = 50
	defaultLogFormat            = "console"
	defaultLogLevel             = "warn"
	defaultInstitution          = "Universidad del Cauca"
)

var defaultAllowedExtensions = []string{".csv", ".xlsx", ".xls"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:              defaultAPIBaseURL,
			UploadTimeoutSeconds: defaultUploadTimeoutSeconds,
			LookupTimeoutSeconds: defaultLookupTimeoutSeconds,
		},
		Paths: Paths{
			StateDir:  defaultStateDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
		},
		Comparison: Comparison{
			MaxFiles:          defaultMaxFiles,
			AllowedExtensions: append([]string(nil), defaultAllowedExtensions...),
		},
		Export: Export{
			Institution: defaultInstitution,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
