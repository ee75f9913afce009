package classifier

import (
	"LinkGate-Backend/pkg/useragent"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	p, err := useragent.NewParser("", zap.NewNop())
	require.NoError(t, err)
	return New(p, "salt")
}

func TestClassifier_HashIP(t *testing.T) {
	c := newTestClassifier(t)

	h1 := c.HashIP("203.0.113.7")
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, c.HashIP(" 203.0.113.7 "))
	assert.NotEqual(t, h1, c.HashIP("203.0.113.8"))
	assert.NotContains(t, h1, "203")

	// same address, different textual forms
	assert.Equal(t, c.HashIP("2001:db8::1"), c.HashIP("2001:0db8:0000:0000:0000:0000:0000:0001"))

	other := New(nil, "other-salt")
	assert.NotEqual(t, h1, other.HashIP("203.0.113.7"))
}

func TestReferrerHost(t *testing.T) {
	tests := []struct {
		referrer string
		want     *string
	}{
		{"", nil},
		{"   ", nil},
		{"not a url", nil},
		{"/relative/path", nil},
		{"https://www.Google.com/search?q=x", strPtr("google.com")},
		{"http://news.ycombinator.com/item?id=1", strPtr("news.ycombinator.com")},
		{"https://t.co/abc", strPtr("t.co")},
		{"https://example.com:8443/x", strPtr("example.com")},
	}

	for _, tt := range tests {
		t.Run(tt.referrer, func(t *testing.T) {
			assert.Equal(t, tt.want, ReferrerHost(tt.referrer))
		})
	}
}

func TestSourceFor(t *testing.T) {
	tests := []struct {
		host *string
		want string
	}{
		{nil, SourceDirect},
		{strPtr("google.com"), "google"},
		{strPtr("google.co.uk"), "google"},
		{strPtr("www.google.de"), "google"},
		{strPtr("news.google.com.br"), "google"},
		{strPtr("google.evil.com"), SourceWeb},
		{strPtr("google.co.evil.com"), SourceWeb},
		{strPtr("notgoogle.com"), SourceWeb},
		{strPtr("m.facebook.com"), "facebook"},
		{strPtr("l.instagram.com"), "instagram"},
		{strPtr("x.com"), "twitter"},
		{strPtr("t.co"), "twitter"},
		{strPtr("old.reddit.com"), "reddit"},
		{strPtr("youtu.be"), "youtube"},
		{strPtr("mail.yahoo.com"), "yahoo"},
		{strPtr("mail.proton.me"), SourceEmail},
		{strPtr("news.ycombinator.com"), SourceWeb},
		{strPtr("notx.com"), SourceWeb},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.host != nil {
			name = *tt.host
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceFor(tt.host))
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("mobile_from_social", func(t *testing.T) {
		ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
		got := c.Classify("198.51.100.1", &ua, strPtr("https://l.facebook.com/l.php"))

		assert.Equal(t, useragent.DeviceMobile, got.DeviceType)
		assert.Equal(t, "iOS", got.OS)
		assert.False(t, got.IsBot)
		require.NotNil(t, got.ReferrerHost)
		assert.Equal(t, "l.facebook.com", *got.ReferrerHost)
		assert.Equal(t, "facebook", got.Source)
	})

	t.Run("bot_direct", func(t *testing.T) {
		ua := "Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)"
		got := c.Classify("198.51.100.2", &ua, nil)

		assert.True(t, got.IsBot)
		assert.Equal(t, useragent.DeviceBot, got.DeviceType)
		assert.Nil(t, got.ReferrerHost)
		assert.Equal(t, SourceDirect, got.Source)
	})

	t.Run("no_user_agent_invalid_referrer", func(t *testing.T) {
		got := c.Classify("198.51.100.3", nil, strPtr("::::"))

		assert.Equal(t, useragent.DeviceUnknown, got.DeviceType)
		assert.Nil(t, got.ReferrerHost)
		assert.Equal(t, SourceDirect, got.Source)
	})

	t.Run("deterministic", func(t *testing.T) {
		ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		ref := strPtr("https://example.org/post")
		assert.Equal(t, c.Classify("10.0.0.1", &ua, ref), c.Classify("10.0.0.1", &ua, ref))
	})
}
