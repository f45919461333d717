package instance

import "os"

// GetID returns the sync daemon instance identifier or a default value.
func GetID() string {
	if id := os.Getenv("SPLITPOCKET_INSTANCE_ID"); id != "" {
		return id
	}
	return "syncd-0"
}
