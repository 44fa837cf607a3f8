/*
Copyright 2025 The Rudder Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *zap.Logger
var sugaredLogger *zap.SugaredLogger

type Config struct {
	Level       string
	SendToFile  bool
	Filename    string
	NoCaller    bool
	NoLogLevel  bool
	Development bool
	MaxSize     int // megabytes
	MaxAge      int // days
	MaxBackups  int
}

func init() {
	Init(&Config{Level: "info"})
}

func Init(cfg *Config) {
	var l = new(zapcore.Level)
	if err := l.UnmarshalText([]byte(cfg.Level)); err != nil {
		panic(err)
	}

	consoleSyncer := zapcore.AddSync(os.Stdout)
	consoleEncoder := getConsoleEncoder(cfg)
	consoleCore := zapcore.NewCore(consoleEncoder, consoleSyncer, l)

	var opts []zap.Option
	opts = append(opts, zap.AddStacktrace(zap.DPanicLevel))
	if !cfg.NoCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	core := consoleCore
	if cfg.SendToFile {
		lumberjackLogger := getLumberjackLogger(cfg.Filename, cfg.MaxSize, cfg.MaxBackups, cfg.MaxAge)
		fileSyncer := zapcore.AddSync(lumberjackLogger)
		fileEncoder := getJSONEncoder(cfg)
		fileCore := zapcore.NewCore(fileEncoder, fileSyncer, l)

		core = zapcore.NewTee(consoleCore, fileCore)
	}

	logger = zap.New(core, opts...)
	sugaredLogger = logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// SugaredLogger returns the shared sugared logger for components that carry
// their own logger reference.
func SugaredLogger() *zap.SugaredLogger {
	return logger.Sugar()
}

func Logger() *zap.Logger {
	return logger
}

func getLumberjackLogger(filename string, maxSize, maxBackups, maxAge int) *lumberjack.Logger {
	if maxSize == 0 {
		maxSize = 100
	}
	if maxBackups == 0 {
		maxBackups = 3
	}
	if maxAge == 0 {
		maxAge = 7
	}

	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		LocalTime:  true,
		Compress:   true,
	}
}

func getConsoleEncoder(cfg *Config) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if cfg.NoLogLevel {
		encoderConfig.LevelKey = zapcore.OmitKey
	}

	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getJSONEncoder(_ *Config) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewJSONEncoder(encoderConfig)
}

func Debugf(format string, args ...interface{}) {
	sugaredLogger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	sugaredLogger.Infof(format, args...)
}

func Info(args ...interface{}) {
	sugaredLogger.Info(args...)
}

func Warnf(format string, args ...interface{}) {
	sugaredLogger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	sugaredLogger.Errorf(format, args...)
}

func Error(args ...interface{}) {
	sugaredLogger.Error(args...)
}

func Fatalf(format string, args ...interface{}) {
	sugaredLogger.Fatalf(format, args...)
}

func Fatal(args ...interface{}) {
	sugaredLogger.Fatal(args...)
}

func Panicf(format string, args ...interface{}) {
	sugaredLogger.Panicf(format, args...)
}
