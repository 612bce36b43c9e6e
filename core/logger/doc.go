// Package logger builds the zap logger shared by the CLI, the reconciler and
// the HTTP surface.
//
// Level "debug" starts from zap's development preset, anything else from the
// production preset. Format selects the json or console encoder; console output
// is colored and drops stack traces.
//
// Requests served through Fiber carry a ray id in Locals under RayIDKey.
// WithRayID copies it onto a child logger so handler output can be joined with
// the access log.
//
//	log, err := logger.New(&logger.Config{Level: "info", Format: "json"})
//	if err != nil {
//		return err
//	}
//	log.Info("Reconcile started", zap.String("mode", "replace"))
//
//	// inside a handler
//	logger.WithRayID(log, c).Error("Check failed", zap.Error(err))
package logger
