package common

// version is overridden at build time via -ldflags "-X cflagd/internal/common.version=..."
var version = "1.0.0"

func GetVersion() string {
	return version
}
