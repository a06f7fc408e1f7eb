package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shearops/shear/internal/config"
	"github.com/shearops/shear/internal/runstate"
	"github.com/shearops/shear/internal/store"
	"github.com/shearops/shear/internal/store/sharepoint"
	"github.com/shearops/shear/internal/telemetry"
)

// stringSetting resolves one string setting: an explicitly set flag
// wins, otherwise the config value (environment > file > default).
func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return config.GetString(key)
}

// resolveStateDir returns the directory holding state.json, the run
// lock, profiles.toml, and the default log files.
func resolveStateDir() string {
	if dir := config.GetString(config.KeyStateDir); dir != "" {
		return dir
	}
	dir, err := runstate.DefaultDir()
	if err != nil {
		FatalError("resolving state directory: %v", err)
	}
	return dir
}

// sinkPath resolves a log file path: the configured value as-is, the
// literal "none" to disable the sink, or defaultName inside the state
// directory when the key is unset.
func sinkPath(key, stateDir, defaultName string) string {
	switch p := config.GetString(key); p {
	case "":
		return filepath.Join(stateDir, defaultName)
	case "none":
		return ""
	default:
		return p
	}
}

// buildStore resolves the site connection and returns the instrumented
// store client. Site resolution: --site flag, then config/environment,
// then the working directory's shear.yaml. The auth token only comes
// from config or environment, never a flag, so it stays out of shell
// history. timeout is the per-request ceiling; zero means the client's
// floor, runs pass their batch window so a large chunked delete is not
// cut off mid-call.
func buildStore(cmd *cobra.Command, timeout time.Duration) store.Client {
	site := stringSetting(cmd, "site", config.KeyStoreSiteURL)
	if site == "" {
		site = config.LoadLocal(".").SiteURL
	}
	if site == "" {
		FatalErrorWithHint("no site configured",
			"pass --site, set store.site-url in the config, or add site-url to ./"+config.LocalFileName)
	}
	token := config.GetString(config.KeyStoreAuthToken)
	if token == "" {
		FatalErrorWithHint("no auth token configured",
			"set SHEAR_STORE_AUTH_TOKEN or store.auth-token in the config")
	}
	return telemetry.WrapStore(sharepoint.New(site, token, sharepoint.Options{Timeout: timeout}))
}
