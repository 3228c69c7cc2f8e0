// Package config builds the tinyflow configuration holder.
//
// Values come, in increasing priority, from the defaults declared in struct
// tags, a tinyflow.yaml (or .toml/.json) file, a .env file and the process
// environment. Nested keys map to upper-case variables joined by
// underscores, so server.utils_port is SERVER_UTILS_PORT and list values
// such as ACCESS_SUPERUSERS are comma separated.
//
// # Configuration Structure
//
//   - Server: API port (1024), utility port (2048) and advertised address
//   - Access: superuser identifiers and the CI access token
//   - Log: logging level and format
//   - Database: run history database (sqlite or mysql)
//   - Storage: S3/MinIO report archive
//   - Klayout: sign-off tool binary, runsets and output folders
//
// The holder is built once and only read afterwards. Superusers returns a
// copy, so it is safe to share a *Config between goroutines.
//
// # Errors
//
// Missing sources are not an error for LoadConfig: defaults apply.
// LoadConfigStrict reports them as ErrConfigMissing. Unparsable sources and
// invalid values fail with ErrConfigMalformed.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Superusers())
package config
