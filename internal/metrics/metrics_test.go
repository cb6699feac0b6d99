package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoopProvider(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	require.NotNil(t, r)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		r.Mutation(ctx, "create", "success")
		r.VisibilityReport(ctx, 3)
		r.AcquireAttempt(ctx, "element")
		r.BridgePacket(ctx, "regular")
	})
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	ctx := context.Background()
	assert.NotPanics(t, func() {
		r.Mutation(ctx, "delete", "error")
		r.VisibilityReport(ctx, 0)
		r.AcquireAttempt(ctx, "none")
		r.BridgePacket(ctx, "trigger")
	})
}
