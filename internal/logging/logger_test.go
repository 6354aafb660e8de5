package logging_test

import (
	"testing"

	"github.com/ginjaninja78/csb3411-remittance/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := logging.NewLogger(level)
		if err != nil {
			t.Fatalf("%s: %v", level, err)
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Fatalf("%s: error level disabled", level)
		}
	}

	if _, err := logging.NewLogger("chatty"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestSugared_KeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.NewSugared(zap.New(core)).With("file", "march.yaml")

	logger.Debug("hidden")
	logger.Warn("Validation problem", "field", "amount", "receipt", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries got=%d want=%d", len(entries), 1)
	}
	fields := entries[0].ContextMap()
	if fields["file"] != "march.yaml" || fields["field"] != "amount" || fields["receipt"] != int64(3) {
		t.Fatalf("fields got=%v", fields)
	}
}

func TestSugared_WithKeepsParentFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := logging.NewSugared(zap.New(core))
	var logger logging.Logger = base.With("file", "march.yaml").With("journal", "suppliers")

	logger.Info("Processing order")
	base.Info("no context")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries got=%d want=%d", len(entries), 2)
	}
	if fields := entries[0].ContextMap(); fields["file"] != "march.yaml" || fields["journal"] != "suppliers" {
		t.Fatalf("fields got=%v", fields)
	}
	if fields := entries[1].ContextMap(); len(fields) != 0 {
		t.Fatalf("parent logger gained fields: %v", fields)
	}
}
