package pipeline

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Schedule 按 cron 表达式（支持 @every 1h 这类描述符）周期执行 job，直到 ctx 结束。
// 上一次还没跑完时跳过本次。
func Schedule(ctx context.Context, spec string, job func(ctx context.Context)) error {
	logger := cronLogger{l: slog.Default()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := c.AddFunc(spec, func() { job(ctx) })
	if err != nil {
		return errors.Wrapf(err, "parse schedule %q", spec)
	}

	c.Start()
	slog.Info("scheduled", "spec", spec)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// cronLogger 把 cron 的日志转到 slog；调度细节只在 debug 级别输出
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
