package log

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ShortString is implemented by identifiers with a compact log representation.
type ShortString interface {
	ShortString() string
}

// ZShortStringer logs the short representation of an identifier.
func ZShortStringer(name string, val ShortString) zap.Field {
	return zap.Stringer(name, shortStringAdapter{val: val})
}

type shortStringAdapter struct {
	val ShortString
}

func (a shortStringAdapter) String() string {
	return a.val.ShortString()
}

// ZContext logs the request id carried by ctx, if any.
func ZContext(ctx context.Context) zap.Field {
	return zap.Inline(&marshalledContext{Context: ctx})
}

type marshalledContext struct {
	context.Context
}

func (c *marshalledContext) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	if c.Context == nil {
		return nil
	}
	if id, ok := ExtractRequestID(c.Context); ok {
		encoder.AddString("request_id", id)
	}
	return nil
}
