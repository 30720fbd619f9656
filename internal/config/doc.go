// Package config provides configuration types and loading for the
// router daemon.
//
// Configuration is read from YAML with environment variable
// substitution using the ${VAR} and ${VAR:-default} syntax, validated
// with detailed error reporting, and optionally watched for
// hot-reload.
//
// # Configuration Loading
//
//	cfg, err := config.Load("routerd.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # File Watching
//
//	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
//	    // Handle configuration update
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	watcher.Start(ctx)
package config
