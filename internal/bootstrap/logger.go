package bootstrap

import (
	"fmt"

	"github.com/go-authgate/accountgate/internal/config"

	"go.uber.org/zap"
)

// NewLogger builds the process logger for the given LOG_FORMAT.
func NewLogger(format string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	switch format {
	case config.LogFormatConsole:
		logger, err = zap.NewDevelopment()
	case config.LogFormatJSON, "":
		logger, err = zap.NewProduction()
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT value: %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
