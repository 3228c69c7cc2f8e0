// Package server holds the network configuration of the tinyflow services.
//
// The cmd package owns the actual Fiber applications; this package
// describes where they listen and how clients reach them, and provides the
// utility app and the BaseContext middleware shared by both servers.
//
// # Configuration
//
// The Config struct defines the API port, the utility port, the advertised
// server address and the API key. Defaults are 1024, 2048, localhost and no
// key, which leaves the API read-only.
//
// # Usage
//
//	app.Listen(cfg.Server.ListenAddr())
//	utils.Listen(cfg.Server.UtilsListenAddr())
package server
