package httpclient

import (
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptcrafter/promptcrafter/internal/util"
)

func TestValidateURLSchemes(t *testing.T) {
	c := NewSaferClient(10 * time.Second)

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://api.openai.com/v1/chat/completions", false},
		{"http://example.com", false},
		{"ftp://example.com", true},
		{"file:///etc/passwd", true},
	}

	for _, tt := range tests {
		u, err := url.Parse(tt.url)
		require.NoError(t, err)
		err = c.validateURL(u)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
		} else {
			assert.NoError(t, err, tt.url)
		}
	}
}

func TestValidateURLBlocksLocalhost(t *testing.T) {
	c := NewSaferClient(10 * time.Second)

	for _, raw := range []string{
		"http://localhost:11434/v1/chat/completions",
		"http://127.0.0.1:8080",
		"http://10.0.0.5",
		"http://192.168.1.1",
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Error(t, c.validateURL(u), raw)
	}
}

func TestAllowPrivateOption(t *testing.T) {
	c := NewSaferClientWithOptions(10*time.Second, SaferClientOptions{
		BlockPrivateIP: util.Ptr(false),
	})

	u, err := url.Parse("http://localhost:11434/v1/chat/completions")
	require.NoError(t, err)
	assert.NoError(t, c.validateURL(u))
}

func TestValidateURLBlocksCredentials(t *testing.T) {
	c := NewSaferClient(10 * time.Second)

	u, err := url.Parse("http://evil.com@example.com/")
	require.NoError(t, err)
	assert.Error(t, c.validateURL(u))
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, isPrivateIP(net.ParseIP("10.1.2.3")))
	assert.True(t, isPrivateIP(net.ParseIP("172.16.0.1")))
	assert.True(t, isPrivateIP(net.ParseIP("127.0.0.1")))
	assert.True(t, isPrivateIP(net.ParseIP("::1")))
	assert.True(t, isPrivateIP(net.ParseIP("fd00::1")))
	assert.False(t, isPrivateIP(net.ParseIP("8.8.8.8")))
	assert.False(t, isPrivateIP(net.ParseIP("2606:4700::1111")))
}
