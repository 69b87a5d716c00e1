// Package config loads and validates the pagetrend YAML configuration file.
//
// A config file names the analytics sources to query, the reporting window
// and top-N size, the path filter policy, and — for serve mode — the HTTP
// port, refresh interval, API auth, and alert rules. Secrets (API keys,
// tokens, webhook URLs) are never stored in the file itself; the file names
// environment variables and the value is resolved at use time.
//
// Watch monitors the file with fsnotify so serve mode can pick up edits
// without a restart.
package config
