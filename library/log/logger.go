// Package log is a logging package that provides functions to log messages.
package log

import (
	"context"

	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

var Logger logSDK.Logger

func init() {
	var err error
	if Logger, err = logSDK.NewConsoleWithName("maidisco", logSDK.LevelInfo); err != nil {
		logSDK.Shared.Panic("new logger", zap.Error(err))
	}
}

// FromContext returns the request logger of a gin request context named
// name, or fallback when ctx does not come from gin.
func FromContext(ctx context.Context, fallback logSDK.Logger, name string) logSDK.Logger {
	if ctx != nil {
		if _, ok := gmw.GetGinCtxFromStdCtx(ctx); ok {
			if logger := gmw.GetLogger(ctx); logger != nil {
				return logger.Named(name)
			}
		}
	}
	if fallback == nil {
		return Logger.Named(name)
	}
	return fallback
}
