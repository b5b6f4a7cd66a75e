package instance

import "os"

// ID identifies the running process in logs. Platform dyno names win over
// the container hostname.
func ID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
