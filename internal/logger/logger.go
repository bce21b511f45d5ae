package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"faithnews/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New создает логгер приложения на основе конфигурации.
// Обычные сообщения и ошибки пишутся в разные файлы с ротацией по размеру;
// при Console=true вывод дублируется в stdout/stderr.
func New(cfg config.LoggerConfig) (*slog.Logger, error) {
	logWriter, errorWriter, err := openSinks(cfg)
	if err != nil {
		return nil, err
	}
	handler := NewLevelDispatcherHandler(logWriter, errorWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(cfg.Level),
	})
	return slog.New(handler), nil
}

// openSinks собирает writer'ы для обычного и ошибочного потоков.
func openSinks(cfg config.LoggerConfig) (io.Writer, io.Writer, error) {
	var logOut, errOut []io.Writer
	if cfg.Console {
		logOut = append(logOut, os.Stdout)
		errOut = append(errOut, os.Stderr)
	}
	if cfg.File != "" {
		w, err := rotatingFile(cfg, cfg.File)
		if err != nil {
			return nil, nil, err
		}
		logOut = append(logOut, w)
	}
	if cfg.ErrorFile != "" {
		w, err := rotatingFile(cfg, cfg.ErrorFile)
		if err != nil {
			return nil, nil, err
		}
		errOut = append(errOut, w)
	}
	if len(logOut) == 0 {
		logOut = append(logOut, io.Discard)
	}
	if len(errOut) == 0 {
		errOut = append(errOut, io.Discard)
	}
	return io.MultiWriter(logOut...), io.MultiWriter(errOut...), nil
}

func rotatingFile(cfg config.LoggerConfig, name string) (io.Writer, error) {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	return &lumberjack.Logger{
		Filename:   name,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}, nil
}

// parseLogLevel преобразует строковое представление уровня логирования в slog.Level.
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelDispatcherHandler маршрутизирует записи по уровню:
// ERROR и выше уходят в errorHandler, остальное в defaultHandler.
type LevelDispatcherHandler struct {
	defaultHandler slog.Handler
	errorHandler   slog.Handler
}

// NewLevelDispatcherHandler создает обработчик, который пишет обычные записи в defaultOut,
// а записи уровня ERROR и выше в errorOut.
func NewLevelDispatcherHandler(defaultOut, errorOut io.Writer, opts *slog.HandlerOptions) *LevelDispatcherHandler {
	return &LevelDispatcherHandler{
		defaultHandler: NewReadableHandler(defaultOut, opts),
		errorHandler:   NewReadableHandler(errorOut, opts),
	}
}

func (h *LevelDispatcherHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}

func (h *LevelDispatcherHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errorHandler.Handle(ctx, r)
	}
	return h.defaultHandler.Handle(ctx, r)
}

func (h *LevelDispatcherHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
		errorHandler:   h.errorHandler.WithAttrs(attrs),
	}
}

func (h *LevelDispatcherHandler) WithGroup(name string) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithGroup(name),
		errorHandler:   h.errorHandler.WithGroup(name),
	}
}

// ReadableHandler форматирует записи в человекочитаемом виде:
//
//	[15:04:05.000] INFO [component] (op) <file.go:42>: message | key=value, ...
//
// Атрибуты, добавленные через With, сохраняются и выводятся перед атрибутами записи.
type ReadableHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   *slog.HandlerOptions
	attrs  []slog.Attr
	prefix string
}

// NewReadableHandler создает обработчик с читаемым форматированием.
// Если opts равен nil, используются настройки по умолчанию.
func NewReadableHandler(w io.Writer, opts *slog.HandlerOptions) *ReadableHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ReadableHandler{mu: &sync.Mutex{}, w: w, opts: opts}
}

func (h *ReadableHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *ReadableHandler) Handle(_ context.Context, r slog.Record) error {
	var component, operation string
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	collect := func(a slog.Attr, prefix string) {
		switch a.Key {
		case "component":
			component = a.Value.String()
		case "op":
			operation = a.Value.String()
		default:
			a.Key = prefix + a.Key
			attrs = append(attrs, a)
		}
	}
	for _, a := range h.attrs {
		collect(a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a, h.prefix)
		return true
	})

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", r.Time.Format("15:04:05.000"), formatLevel(r.Level))
	if component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	if operation != "" {
		fmt.Fprintf(&b, " (%s)", operation)
	}
	if h.opts.AddSource && r.PC != 0 {
		if src := sourceOf(r); src != "" {
			fmt.Fprintf(&b, " <%s>", src)
		}
	}
	b.WriteString(": ")
	b.WriteString(r.Message)
	if len(attrs) > 0 {
		parts := make([]string, 0, len(attrs))
		for _, a := range attrs {
			parts = append(parts, formatAttr(a))
		}
		b.WriteString(" | ")
		b.WriteString(strings.Join(parts, ", "))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *ReadableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" && a.Key != "component" && a.Key != "op" {
			a.Key = h.prefix + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *ReadableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func sourceOf(r slog.Record) string {
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

func formatLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// formatAttr форматирует атрибут с учетом часто используемых ключей.
func formatAttr(attr slog.Attr) string {
	switch attr.Key {
	case "error":
		return fmt.Sprintf("error=%q", attr.Value.String())
	case "url":
		return "url=" + shortenURL(attr.Value.String())
	case "duration":
		if attr.Value.Kind() == slog.KindDuration {
			return "took=" + attr.Value.Duration().Round(time.Millisecond).String()
		}
		return "duration=" + attr.Value.String()
	default:
		return attr.Key + "=" + attr.Value.String()
	}
}

// shortenURL сокращает длинные URL до схемы и домена.
func shortenURL(url string) string {
	if len(url) > 50 {
		parts := strings.Split(url, "/")
		if len(parts) >= 3 {
			return fmt.Sprintf("%s//%s/...", parts[0], parts[2])
		}
	}
	return url
}
