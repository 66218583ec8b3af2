package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/config"
)

var (
	mu     sync.RWMutex
	writer io.Writer = os.Stdout
)

// Init configures the global zerolog logger. When cfg.File is set, output goes
// to stdout and to a size capped file.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var raw io.Writer = os.Stdout
	if cfg.File != "" {
		fw, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB, cfg.MaxBackups)
		if err != nil {
			return err
		}
		raw = io.MultiWriter(os.Stdout, fw)
	}

	var output io.Writer = raw
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: raw}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	mu.Lock()
	writer = raw
	mu.Unlock()
	return nil
}

// Writer is the sink behind the global logger, for slog based request logs.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return writer
}
