package store

import (
	"context"
	"time"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/observability"
	"github.com/rs/zerolog"
)

// LogHook is a zerolog.Hook copying records at or above Level into a RunLog.
// Only records logged with a context carrying a run id (see wealth.WithRunID) are kept.
type LogHook struct {
	Log   RunLog
	Level zerolog.Level
	Name  string // store name in metrics

	now func() time.Time
}

// NewLogHook returns a hook inserting records at or above level in log.
func NewLogHook(log RunLog, name string, level zerolog.Level) *LogHook {
	return &LogHook{Log: log, Level: level, Name: name, now: time.Now}
}

// Run implements zerolog.Hook.
func (h *LogHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level < h.Level || level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}
	ctx := e.GetCtx()
	id, ok := wealth.RunIDFrom(ctx)
	if !ok {
		return
	}
	err := h.Log.Insert(context.WithoutCancel(ctx), &LogEntry{
		RunID:   id,
		Level:   level.String(),
		Message: msg,
		AddTime: h.now(),
	})
	observability.RecordStoreWrite(h.Name, "run_log", 1, err)
}
