// Package logging provides structured logging for the media player adapter.
//
// It wraps Go's standard log/slog package so all components log with
// consistent default fields (service, version), level filtering, and a
// choice of JSON (production) or text (development) output.
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log broker credentials or tokens.
package logging
