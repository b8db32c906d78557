package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{
		backend:    backend,
		sqlitePath: sqlitePath,
	}
}

// NewBoardForTest creates a Board config for testing purposes
func NewBoardForTest(path string) *Board {
	return &Board{path: path}
}
