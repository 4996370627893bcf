package logger

import "context"

type contextKey string

const sequenceIDKey = contextKey("sequence-id")

// ContextWithSequenceID returns a context tagged with the sequence id of the
// command currently being processed.
func ContextWithSequenceID(ctx context.Context, sequenceID int64) context.Context {
	return context.WithValue(ctx, sequenceIDKey, sequenceID)
}

// SequenceIDFromContext returns the sequence id stored in the context, or
// zero when the context is untagged.
func SequenceIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(sequenceIDKey).(int64)
	return id
}
