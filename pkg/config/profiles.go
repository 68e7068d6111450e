package config

func applyProfile(cfg *Config) {
	switch cfg.Environment {
	case EnvironmentDevelopment:
		loadDevelopmentConfig(cfg)
	case EnvironmentTest:
		loadTestConfig(cfg)
	}
}

func loadDevelopmentConfig(cfg *Config) {
	cfg.DatabaseDebug = true
	cfg.DatabaseFilePath = "./tmp/data.sqlite"
	cfg.ServerHost = "127.0.0.1"
}

func loadTestConfig(cfg *Config) {
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	cfg.TMDBAPIKey = "test-api-key"
	cfg.TMDBRetryMax = 0
	cfg.TMDBRetryWaitMin = 0
	cfg.TMDBRetryWaitMax = 0
	cfg.WorkerEnabled = false
}
