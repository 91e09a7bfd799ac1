package events

import (
	"context"
	"encoding/json"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type logEmitter struct {
	logger logger.Logger
	prefix string
}

// NewLog writes events to the logger. Used when no client is listening.
func NewLog(log logger.Logger, prefix string) Emitter {
	return &logEmitter{logger: log, prefix: prefix}
}

func (l *logEmitter) Emit(ctx context.Context, e Event) error {
	switch p := e.Payload.(type) {
	case ProgressPayload:
		l.logger.Info(ctx, "%s: %s", l.prefix, p.Message)
	case ErrorPayload:
		l.logger.Error(ctx, "%s: %s (%s)", l.prefix, p.Message, p.Detail)
	default:
		data, _ := json.Marshal(p)
		l.logger.Debug(ctx, "%s: %s event: %s", l.prefix, e.Kind, data)
	}
	return nil
}
