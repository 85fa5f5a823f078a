package config

import "strings"

// AppVersion is the version of the frame.
var AppVersion string // Set with -ldflags "-X github.com/gaubeleo/photoframe/config.AppVersion=..."

// AppName is the name of the application.
const AppName = "Photoframe"

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// ConfigFileName is the base name of the YAML configuration file.
const ConfigFileName = "config"

// EnvPrefix prefixes every environment override (PHOTOFRAME_REFRESH_INTERVAL, ...).
const EnvPrefix = "PHOTOFRAME"
