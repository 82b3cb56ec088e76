// Package logger holds the process-wide zap logger. Init must be
// called once from main before any other package logs.
package logger

import (
	"go.uber.org/zap"
)

var (
	// L is the structured logger.
	L *zap.Logger
	// S is the sugared logger for printf-style call sites.
	S *zap.SugaredLogger
)

func init() {
	// Safe default so tests can log without calling Init.
	L = zap.NewNop()
	S = L.Sugar()
}

func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	if environment == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	L = l
	S = l.Sugar()
	return nil
}

func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}
