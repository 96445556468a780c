package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("SITIOS_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("SITIOS_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("SITIOS_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/sitios"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("SITIOS_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetListen() string {
	listen := os.Getenv("SITIOS_LISTEN")
	if listen == "" {
		listen = "0.0.0.0"
	}
	return listen
}

func GetPort() int {
	return intEnv("SITIOS_PORT", 5000)
}

func GetBasePath() string {
	basePath := os.Getenv("SITIOS_BASE_PATH")
	if basePath == "" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

// GetWebDomain restricts the panel to one hostname when set.
func GetWebDomain() string {
	return os.Getenv("SITIOS_WEB_DOMAIN")
}

func GetSecretKey() string {
	secret := os.Getenv("SITIOS_SECRET_KEY")
	if secret == "" {
		secret = "please-change-me"
	}
	return secret
}

func GetJWTSecret() string {
	secret := os.Getenv("SITIOS_JWT_SECRET")
	if secret == "" {
		return GetSecretKey()
	}
	return secret
}

// GetSessionMaxAge returns the admin session lifetime in minutes.
func GetSessionMaxAge() int {
	return intEnv("SITIOS_SESSION_MAX_AGE", 60)
}

// GetHistoryRetentionDays returns how long site history events are kept.
func GetHistoryRetentionDays() int {
	return intEnv("SITIOS_HISTORY_RETENTION_DAYS", 365)
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
