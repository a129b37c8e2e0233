/**
 * @description
 * Builds the service's zap logger. Development-like environments get the zap
 * development profile at debug level; everything else gets the production profile
 * at info level. Both emit JSON with capitalized levels.
 *
 * @dependencies
 * - go.uber.org/zap: Structured logging.
 */
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains the logger initialization inputs.
type Config struct {
	Environment string
	Level       string
	Service     string
}

// New creates a structured logger and returns it with a runtime-adjustable level handle.
func New(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))

	base := buildConfigByEnvironment(env)
	level, err := resolveLevel(env, cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	base.Level = level
	base.DisableStacktrace = true

	built, err := base.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to build logger: %w", err)
	}
	if cfg.Service != "" {
		built = built.With(zap.String("service", cfg.Service))
	}
	return built, level, nil
}

func isDevelopment(env string) bool {
	return env == "" || env == "development" || env == "local"
}

func resolveLevel(env, raw string) (zap.AtomicLevel, error) {
	if strings.TrimSpace(raw) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(strings.TrimSpace(raw)); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid level %q: %w", raw, err)
		}
		return zap.NewAtomicLevelAt(parsed), nil
	}

	if isDevelopment(env) {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}

func buildConfigByEnvironment(env string) zap.Config {
	var cfg zap.Config
	if isDevelopment(env) {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "json"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
