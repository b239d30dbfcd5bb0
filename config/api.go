package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Health probe and the static playground page are public
	return []string{"/health", "/playground"}
}
