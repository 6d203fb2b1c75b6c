package oneinf

import (
	"log/slog"
)

var logger = slog.New(slog.DiscardHandler)

// SetLogger sets the logger used by Fit and FitGroups. A nil logger discards
// output. It is not safe to call concurrently with fitting.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger = l
}
