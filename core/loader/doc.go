// Package loader registers and loads the HTTP features of the service.
//
// Each feature implements Feature:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager keeps them in registration order and LoadAll mounts the enabled ones.
package loader
