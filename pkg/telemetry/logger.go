// Package telemetry wires the block-store service's logging and tracing.
// Neither the codec (rscodec) nor the internal field/matrix packages
// import this package: the core stays pure with respect to observability,
// exactly as the specification requires. erasurecoding opens its spans
// through Tracer; cmd/blockserver builds the service's logger with
// NewLogger and hands that *zap.Logger to blockstore and api, which log
// through it but open no spans of their own.
package telemetry

import "go.uber.org/zap"

// NewLogger builds a production zap logger. Callers are responsible for
// calling Sync on the returned logger before the process exits.
func NewLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}
