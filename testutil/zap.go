package testutil

import (
	"encoding/hex"
	"net/url"
	"testing"

	"go.uber.org/zap"
)

// NewLogger provides a development-config zap logger whose output is
// discarded, for wiring into the services and handlers under test.
//
// Zap won't build a logger on a bare io.Writer, but it does allow the
// registration of a scheme and sink factory pair. The scheme has to be
// unique because zap refuses to register the same scheme twice, so it is
// derived from the test's name. That also means a test function can call
// NewLogger at most once; fixtures share the one logger instead.
func NewLogger(t *testing.T) *zap.SugaredLogger {
	scheme := testScheme(t)
	factory := func(u *url.URL) (zap.Sink, error) { return discardSink{}, nil }
	if err := zap.RegisterSink(scheme, factory); err != nil {
		t.Fatalf("registering zap scheme %q: %s", scheme, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{scheme + "://" + t.Name()}
	base, err := cfg.Build()
	if err != nil {
		t.Fatalf("building zap logger: %s", err)
	}
	return base.Sugar()
}

// schemes must start with a letter; hex-encoding the test name keeps the
// rest of it legal
func testScheme(t *testing.T) string {
	return "t" + hex.EncodeToString([]byte(t.Name()))
}

type discardSink struct{}

func (discardSink) Write(p []byte) (int, error) { return len(p), nil }

func (discardSink) Sync() error { return nil }

func (discardSink) Close() error { return nil }
