package env

import (
	"os"

	"github.com/joho/godotenv"
)

// Env holds the key/value pairs read from the .env file. Process
// environment variables take over when a key is missing from the file.
var Env map[string]string

// GetEnv returns the configured value for key, falling back to the process
// environment and then to def.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the first .env file found relative to the working
// directory. Binaries run from cmd/<name> as well as from the project root,
// hence the parent-directory candidates.
func SetupEnvFile() {
	candidates := []string{".env", "../../.env", "../../../.env"}

	for _, path := range candidates {
		if parsed, err := godotenv.Read(path); err == nil {
			Env = parsed
			return
		}
	}

	panic("no .env file found in any of the expected locations")
}

// IsDev reports whether the app runs with APP_ENV=dev.
func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
