package minishogi

import (
	"errors"
	"log/slog"
)

var log = slog.Default().With("package", "minishogi")

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidIcon     = errors.New("invalid piece icon")
	ErrInvalidCommand  = errors.New("invalid command")
	ErrInvalidSetup    = errors.New("invalid setup")
)
