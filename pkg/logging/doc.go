// Package logging configures log/slog for specmock.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//	logger.Info("mock server started", "addr", ":8080")
//
// Components accept a *slog.Logger through an option and default to Nop.
package logging
