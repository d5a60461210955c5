package config

// GetStorageDir returns the directory backing the object store.
func GetStorageDir() string {
	return GetEnvOrDefault("STORAGE_DIR", "./data/uploads")
}
