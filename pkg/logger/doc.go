// Package logger builds the process *slog.Logger and provides attribute
// helpers so every package names common fields the same way.
//
// New applies functional options; NewFromConfig derives them from the
// APP_ENV, APP_NAME and LOG_LEVEL environment variables. Context extractors
// (for example requestid.LoggerExtractor) add request-scoped attributes to
// every record logged with a *Context method:
//
//	log := logger.NewFromConfig(cfg,
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.ErrorContext(ctx, "token exchange failed",
//		logger.Provider(loopin.ProviderGoogle),
//		logger.Error(err),
//	)
//
// Error, Provider and RequestID return an empty attribute for empty input,
// which slog drops, so callers do not need nil checks.
package logger
