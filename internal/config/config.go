// Package config is the viper-backed configuration layer: key
// constants, defaults, and typed getters shared by all commands.
// Precedence is environment over config file over defaults; command
// flags sit on top and are resolved by the command layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shearops/shear/internal/engine"
)

// Configuration keys.
const (
	KeyTrimOlderThanDays = "trim.older-than-days"
	KeyTrimLibrary       = "trim.library"
	KeyTrimLibraryList   = "trim.library-list"
	KeyTrimDelete        = "trim.delete"

	KeyBatchPercent      = "batch.percent"
	KeyBatchMaxMinutes   = "batch.max-minutes"
	KeyBatchAutoContinue = "batch.auto-continue"
	KeyBatchBypass       = "batch.bypass"

	KeyDeleteChunkSize    = "delete.chunk-size"
	KeyDeleteChunkPauseMs = "delete.chunk-pause-ms"
	KeyDeleteMaxRetries   = "delete.max-retries"

	KeyStoreSiteURL   = "store.site-url"
	KeyStoreAuthToken = "store.auth-token"

	KeyLogsActionLog = "logs.action-log"
	KeyLogsSizeLog   = "logs.size-log"
	KeyLogsEventLog  = "logs.event-log"

	KeyStateDir = "state.dir"
)

// EnvPrefix makes every key reachable as SHEAR_SECTION_KEY, e.g.
// SHEAR_STORE_AUTH_TOKEN or SHEAR_TRIM_OLDER_THAN_DAYS.
const EnvPrefix = "SHEAR"

var v *viper.Viper

// Initialize loads configuration. An explicit path must exist; with no
// path the per-user config file is optional and silently absent.
func Initialize(path string) error {
	nv := viper.New()
	registerDefaults(nv)

	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()

	if path != "" {
		nv.SetConfigFile(path)
		if err := nv.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if dir, err := os.UserConfigDir(); err == nil {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(filepath.Join(dir, "shear"))
		if err := nv.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v = nv
	return nil
}

func registerDefaults(nv *viper.Viper) {
	nv.SetDefault(KeyTrimOlderThanDays, engine.DefaultOlderThanDays)
	nv.SetDefault(KeyBatchPercent, engine.DefaultBatchPercent)
	nv.SetDefault(KeyBatchMaxMinutes, engine.DefaultMaxBatchMinutes)
	nv.SetDefault(KeyDeleteChunkSize, engine.DefaultChunkSize)
	nv.SetDefault(KeyDeleteChunkPauseMs, int(engine.DefaultChunkPause/time.Millisecond))
	nv.SetDefault(KeyDeleteMaxRetries, engine.DefaultMaxAttempts)
}

// GetString returns the string value for key.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt returns the int value for key.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetBool returns the bool value for key.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetStringSlice returns the string slice value for key.
func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	return v.GetStringSlice(key)
}

// Set overrides a value in the live configuration. Test helper.
func Set(key string, value interface{}) {
	if v == nil {
		v = viper.New()
		registerDefaults(v)
	}
	v.Set(key, value)
}

// ConfigFileUsed reports the config file Initialize loaded, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
