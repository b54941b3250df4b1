// Package logger builds configured log/slog loggers for hosts embedding the
// decision engine.
//
// Defaults are production-safe (JSON at info level on stdout); options or
// LOG_LEVEL/LOG_FORMAT environment variables override them:
//
//	log, err := logger.NewFromEnv(
//		logger.WithAttr(slog.String("service", "decisions")),
//	)
//	if err != nil {
//		return err
//	}
//	logger.SetAsDefault(log)
//
// Engine packages never construct loggers themselves; they accept one via
// their functional options and fall back to slog.Default().
package logger
