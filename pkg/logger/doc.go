// Package logger provides a small factory around log/slog plus typed
// attribute helpers shared across the socialauth services.
//
// The factory keeps configuration explicit and environment-driven:
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatJSON),
//	    logger.WithLevel(slog.LevelInfo),
//	    logger.WithAttr(logger.Component("server")),
//	)
//
// Attribute helpers keep log keys consistent so records aggregate cleanly:
//
//	log.Error("failed to touch social account",
//	    logger.Error(err),
//	    logger.UserID(userID),
//	    logger.Provider("google"),
//	)
package logger
