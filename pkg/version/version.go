package version

import (
	"strconv"
	"time"
)

// These variables are overwritten at build time using -ldflags.
var (
	version   = "0.0.0-dev"
	buildTime = "0"
)

// Version of the SDK. Sent as `versionSDK` with every deployment.
func Version() string {
	return version
}

// BuildTime returns the time the binary was built.
func BuildTime() (time.Time, error) {
	i, err := strconv.ParseInt(buildTime, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(i, 0), nil
}
