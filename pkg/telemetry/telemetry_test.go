package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProviderIsSafe(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, &Config{Enabled: false})
	require.NoError(t, err)

	// Every recording call must no-op without panicking.
	p.RecordCycle(ctx, "signed", false, time.Millisecond)
	p.RecordSubmission(ctx, "signed", 2, 1)
	p.RecordRejection(ctx, "invalid")
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(ctx))
}

func TestNilProviderIsSafe(t *testing.T) {
	ctx := context.Background()
	var p *Provider
	p.RecordCycle(ctx, "none", false, 0)
	p.RecordSubmission(ctx, "none", 0, 0)
	p.RecordRejection(ctx, "duplicate")
}

func TestDefaultConfigDisabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "edge-connect", cfg.ServiceName)
}
