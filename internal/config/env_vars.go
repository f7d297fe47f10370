package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar  = "PORT"
	appNameVar  = "APP_NAME"
	envVar      = "ENV"
	logLevelVar = "LOG_LEVEL"
)

type EnvVars struct {
	src *source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.src.get(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.src.get(appNameVar, "EventHub Auth")
}

func (e EnvVars) GetEnv() string {
	return e.src.get(envVar, "DEV")
}

func (e EnvVars) GetLogLevel() string {
	return e.src.get(logLevelVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
