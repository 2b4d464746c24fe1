package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/bryanwahyu/mealsense/internal/domain/diagnostics"
)

// LoadDotEnv loads the given files (default ".env") into the process environment
// without overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// CredentialSnapshot captures the credential variables from the process
// environment. The diagnostics engine only ever sees this snapshot.
func CredentialSnapshot() diagnostics.ConfigSnapshot {
	return diagnostics.SnapshotFrom(os.LookupEnv)
}
