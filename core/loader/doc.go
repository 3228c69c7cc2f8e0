// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which reports whether it
// is enabled and registers its routes:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager registers features and loads the enabled ones in order.
package loader
