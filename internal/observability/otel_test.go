package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOTLPHeadersSkipsMalformedPairs(t *testing.T) {
	got := otlpHeaders([]string{"api-key=abc", "broken", "=x", "team = journal "})
	assert.Equal(t, map[string]string{"api-key": "abc", "team": "journal"}, got)
}

func TestSampleRatioClamps(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "")
	assert.Equal(t, defaultSampleRatio, sampleRatio())

	t.Setenv("OTEL_SAMPLER_RATIO", "7")
	assert.Equal(t, 1.0, sampleRatio())

	t.Setenv("OTEL_SAMPLER_RATIO", "-1")
	assert.Equal(t, 0.0, sampleRatio())

	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")
	assert.Equal(t, 0.5, sampleRatio())
}

func TestInitOTelDisabledReturnsNil(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	if InitOTel(t.Context(), nil, OtelConfig{}) != nil {
		t.Fatalf("expected nil shutdown when tracing is disabled")
	}
}
