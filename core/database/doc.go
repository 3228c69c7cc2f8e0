// Package database opens the run history database.
//
// It wraps GORM and picks the dialector from the configuration: SQLite (the
// default, a single local file) or MySQL for shared deployments.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Run history disabled", zap.Error(err))
//	}
package database
