package instance

import "os"

// GetID returns the device instance identifier reported to the commerce API
// or a default value.
func GetID() string {
	if id := os.Getenv("DEVICE_ID"); id != "" {
		return id
	}
	return "cartd-0"
}
