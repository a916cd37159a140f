// Package logger builds the *slog.Logger used across the attribution client
// and provides attribute helpers that keep key names consistent.
//
// New accepts functional options for output format, level, static attributes
// and ContextExtractor callbacks that pull values (for example a request id)
// out of context.Context on every record. Helpers such as Endpoint, Status,
// InstallInstanceID and Error return ready-made slog.Attr values; Error
// returns an empty Attr for a nil error so it can be passed unconditionally.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithLevelName("debug"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.WarnContext(ctx, "backend rejected request",
//	    logger.Endpoint("/api/client/init"),
//	    logger.Status(400),
//	)
//
// Packages that accept an optional *slog.Logger call OrDiscard so a nil
// logger never panics.
package logger
