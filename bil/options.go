package bil

import "log/slog"

// Option configures header parsing and payload decoding.
type Option func(*options)

type options struct {
	honorByteOrder bool
	checkRowBytes  bool
	logger         *slog.Logger
}

var discardLogger = slog.New(slog.DiscardHandler)

func applyOptions(opts []Option) *options {
	o := &options{logger: discardLogger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithByteOrder reconstructs 16-bit samples in the byte order BYTEORDER
// declares. Without it 16-bit samples are always read little-endian, which
// matches how existing datasets were produced.
func WithByteOrder() Option {
	return func(o *options) {
		o.honorByteOrder = true
	}
}

// WithRowBytesCheck rejects headers whose declared BANDROWBYTES or
// TOTALROWBYTES disagree with the geometry.
func WithRowBytesCheck() Option {
	return func(o *options) {
		o.checkRowBytes = true
	}
}

// WithLogger sets the logger used for debug output. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
