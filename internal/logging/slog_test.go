package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redirectStdout points the console handler at a pipe until the returned
// func is called, which yields everything written.
func redirectStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	prev := stdout
	stdout = w

	return func() string {
		w.Close()
		stdout = prev
		var buf bytes.Buffer
		buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}

func TestSetup_SessionFileKeepsConsoleQuiet(t *testing.T) {
	done := redirectStdout(t)

	var file bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info")
	m.Logger().Info("marker created", "id", "m1")

	console := done()
	assert.Contains(t, file.String(), "marker created")
	assert.Contains(t, file.String(), "id=m1")
	assert.Empty(t, console)
}

func TestSetup_ConsoleWithoutFile(t *testing.T) {
	done := redirectStdout(t)

	m := NewSlogManager()
	m.Setup(nil, "info")
	m.Logger().Info("bridge started")

	assert.Contains(t, done(), "bridge started")
}

func TestSetup_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level)

			m.Logger().Debug("tick skipped")
			m.Logger().Error("device write failed")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("tick skipped")))
			assert.Contains(t, buf.String(), "device write failed")
		})
	}
}

func TestSetup_SecondCallSwitchesFile(t *testing.T) {
	var first, second bytes.Buffer
	m := NewSlogManager()

	m.Setup(&first, "info")
	m.Logger().Info("before reload")
	m.Setup(&second, "info")
	m.Logger().Info("after reload")

	assert.Contains(t, first.String(), "before reload")
	assert.NotContains(t, first.String(), "after reload")
	assert.Contains(t, second.String(), "after reload")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestSetup_TimestampsInUTC(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info")
	m.Logger().Info("report stored")

	assert.Regexp(t, `time=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"Info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestSetup_ExtraHandlerReceivesRecords(t *testing.T) {
	var file, extra bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", Sink{Name: "audit", Handler: slog.NewJSONHandler(&extra, nil)})

	m.Logger().Info("shipped", "marker_id", "abc")

	assert.Contains(t, file.String(), "shipped")
	assert.Contains(t, file.String(), "sinks=\"[file audit]\"")
	assert.Contains(t, extra.String(), `"marker_id":"abc"`)
}

func TestSetup_ContextProvider(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.String("backend", "sqlite")}
	})
	m.Setup(&buf, "info")

	m.Logger().Info("with context")
	assert.Contains(t, buf.String(), "backend=sqlite")
}

func TestSetup_RequestAttrsFromContext(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info")

	ctx := WithAttrs(context.Background(), slog.String("request_id", "r1"))
	ctx = WithAttrs(ctx, slog.String("marker_id", "m7"))
	m.Logger().InfoContext(ctx, "Deleted marker")
	m.Logger().Info("no request")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[1]), "request_id=r1 marker_id=m7")
	assert.NotContains(t, string(lines[2]), "request_id")
}

func TestWithAttrs_DoesNotLeakIntoParent(t *testing.T) {
	parent := WithAttrs(context.Background(), slog.String("a", "1"))
	_ = WithAttrs(parent, slog.String("b", "2"))

	assert.Len(t, AttrsFrom(parent), 1)
	assert.Nil(t, AttrsFrom(context.Background()))
	assert.Equal(t, parent, WithAttrs(parent))
}

func TestAddGELF_RegistersCloser(t *testing.T) {
	m := NewSlogManager()
	sink, err := m.AddGELF("127.0.0.1:12201", "info")
	require.NoError(t, err)
	assert.Equal(t, "graylog", sink.Name)
	require.NotNil(t, sink.Handler)

	var buf bytes.Buffer
	m.Setup(&buf, "info", sink)
	m.Logger().Info("to graylog")

	assert.Contains(t, buf.String(), "to graylog")
	assert.NoError(t, m.Close(context.Background()))
}

func TestClose_NoSinks(t *testing.T) {
	assert.NoError(t, NewSlogManager().Close(context.Background()))
}

func TestClose_CancelledContext(t *testing.T) {
	m := NewSlogManager()
	_, err := m.AddGELF("127.0.0.1:12201", "info")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Close(ctx), context.Canceled)
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("connection refused")
}

func TestMultiHandler_FailingSinkDoesNotStopOthers(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(
		Sink{Name: "graylog", Handler: failingHandler{}},
		Sink{Name: "unset"},
		Sink{Name: "file", Handler: slog.NewTextHandler(&buf, nil)},
	)
	assert.Equal(t, []string{"graylog", "file"}, multi.Sinks())

	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "visibility report", 0))
	assert.EqualError(t, err, "graylog sink: connection refused")
	assert.Contains(t, buf.String(), "visibility report")
}

func TestMultiHandler_Enabled(t *testing.T) {
	info := Sink{Name: "file", Handler: slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})}
	debug := Sink{Name: "console", Handler: slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})}
	ctx := context.Background()

	assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelInfo))
	assert.False(t, NewMultiHandler(info).Enabled(ctx, slog.LevelDebug))
	assert.True(t, NewMultiHandler(info, debug).Enabled(ctx, slog.LevelDebug))
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(Sink{Name: "file", Handler: slog.NewTextHandler(&buf, nil)})

	assert.Equal(t, slog.Handler(multi), multi.WithGroup(""))

	derived := multi.WithAttrs([]slog.Attr{slog.String("component", "bridge")}).WithGroup("frame")
	assert.Equal(t, []string{"file"}, derived.(*MultiHandler).Sinks())

	slog.New(derived).Info("sent", "bytes", 50)
	assert.Contains(t, buf.String(), "component=bridge")
	assert.Contains(t, buf.String(), "frame.bytes=50")
}
