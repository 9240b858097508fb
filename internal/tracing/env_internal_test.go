package tracing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = s3cr3t ,tenant=fleet,broken, =x")
	assert.Equal(t, map[string]string{"api-key": "s3cr3t", "tenant": "fleet"}, got)
	assert.Empty(t, parseHeaders(""))
}

func TestParseTimeout(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, parseTimeout("1500", time.Second))
	assert.Equal(t, 3*time.Second, parseTimeout("3s", time.Second))
	assert.Equal(t, time.Second, parseTimeout("soon", time.Second))
	assert.Equal(t, time.Second, parseTimeout("", time.Second))
}

func TestIsInsecure(t *testing.T) {
	assert.True(t, isInsecure("", " TRUE "))
	assert.False(t, isInsecure("false", ""))
}

func TestServiceName(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	assert.Equal(t, defaultServiceName, serviceName())
	t.Setenv("OTEL_SERVICE_NAME", "dispatcher")
	assert.Equal(t, "dispatcher", serviceName())
}
