package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from earning_records"))
	assert.Equal(t, "UPDATE", operationFromSQL("  UPDATE earning_records SET status = 'paid'"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestGormLoggerTrace_LogsErrorsWithoutParams(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Second)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO payslips VALUES (1)", 0
	}, errors.New("boom"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "gorm.query", entries[0].Message)
		assert.Equal(t, "INSERT", entries[0].ContextMap()["operation"])
		_, hasSQL := entries[0].ContextMap()["sql"]
		assert.False(t, hasSQL)
	}
}

func TestGormLoggerTrace_IgnoresRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Second)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Empty(t, logs.All())
}
