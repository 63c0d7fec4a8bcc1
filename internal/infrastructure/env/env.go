package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env and then .env.<APP_ENV> (default "dev") into the process
// environment. Missing files are not an error; the returned list names the
// files that were loaded.
func Load() ([]string, error) {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}
	return LoadFiles(".env", fmt.Sprintf(".env.%s", appEnv))
}

// LoadFiles loads the first file without overriding the existing
// environment and lets each later file override earlier values.
func LoadFiles(base string, overlays ...string) ([]string, error) {
	var loaded []string

	if exists(base) {
		if err := godotenv.Load(base); err != nil {
			return loaded, fmt.Errorf("load %s: %w", base, err)
		}
		loaded = append(loaded, base)
	}

	for _, f := range overlays {
		if !exists(f) {
			continue
		}
		if err := godotenv.Overload(f); err != nil {
			return loaded, fmt.Errorf("load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}

	return loaded, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
