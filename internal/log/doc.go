// Package log builds footprint's slog loggers.
//
// Every logger returned here wraps its handler in a SecureHandler, which
// masks provider credentials before they are written: GitHub tokens, Bing
// subscription keys, NVD API keys, Authorization headers and credential
// query parameters in logged URLs. Masking applies at every level,
// including debug output enabled with --verbose.
//
//	logger := log.New(os.Stderr, "json", verbose)
//	logger.Debug("request", "url", req.URL.String(), "authorization", req.Header.Get("Authorization"))
package log
