package utils

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

// GetPersistentServerID returns a stable id for this process host, used as the
// owner value of distributed locks.
// Order: explicit override, storages/.server_id, sanitized hostname, random id (persisted).
func GetPersistentServerID(override, storagePath string) string {
	if override != "" {
		return override
	}

	idFile := filepath.Join(storagePath, ".server_id")
	if data, err := os.ReadFile(idFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" && hostname != "localhost" {
		cleanHost := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				return r
			}
			return -1
		}, hostname)
		if cleanHost != "" {
			return "groomflo-" + cleanHost
		}
	}

	randomPart := make([]byte, 4)
	_, _ = rand.Read(randomPart)
	newID := "groomflo-" + hex.EncodeToString(randomPart)

	_ = os.MkdirAll(storagePath, 0755)
	_ = os.WriteFile(idFile, []byte(newID), 0644)

	return newID
}
