// ABOUTME: Version information for dsptool
// ABOUTME: Constants reported by the CLI and written into tool banners
package version

import "fmt"

const (
	Version      = "0.1.0"
	Product      = "dsptool"
	Manufacturer = "Resonate Protocol"
)

// String returns the banner printed by "dsptool version"
func String() string {
	return fmt.Sprintf("%s %s (%s)", Product, Version, Manufacturer)
}
