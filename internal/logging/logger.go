package logging

import (
	"context"

	"go.uber.org/zap"
)

type Logger struct {
	*zap.Logger
}

// context key 定义，避免使用裸 string
type ctxKey int

const (
	traceIDKey ctxKey = iota
	loggerKey
)

func New(level, format string) (*Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
	}
	lg, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{lg}, nil
}

// NewNop 测试用
func NewNop() *Logger { return &Logger{zap.NewNop()} }

// WithTraceID 把 trace_id 放入 ctx，供 WithContext 取出
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(traceIDKey).(string)
	return s
}

func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.Logger
	}
	if id := TraceID(ctx); id != "" {
		return l.Logger.With(zap.String("trace_id", id))
	}
	return l.Logger
}

// NewContext 将带字段的 logger 放入请求 context
func NewContext(ctx context.Context, lg *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, lg)
}

// FromContext 取出请求级 logger；未注入时返回 nop，调用方无需判空
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if lg, ok := ctx.Value(loggerKey).(*zap.Logger); ok && lg != nil {
			return lg
		}
	}
	return zap.NewNop()
}
