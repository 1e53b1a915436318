package config

type StorageConfig struct {
	// DBPath is the bolt file holding settled quotes.
	// Default: "./data/quotes.db"
	DBPath string

	// HistoryEnabled controls whether settled quotes are persisted.
	HistoryEnabled bool

	// HistoryLimit caps how many quotes are kept per chain.
	HistoryLimit int
}

func (c *StorageConfig) Key() string {
	return STORAGE_CONFIG_KEY
}

func (c *StorageConfig) Load() error {
	c.DBPath = GetEnvOrDefault("QUOTE_DB_PATH", "./data/quotes.db")
	c.HistoryEnabled = GetEnvOrDefaultBool("QUOTE_HISTORY_ENABLED", true)
	c.HistoryLimit = GetEnvOrDefaultInt("QUOTE_HISTORY_LIMIT", 1000)
	return nil
}

func (c *StorageConfig) Validate() error {
	return nil
}
