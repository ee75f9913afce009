package service

import (
	"LinkGate-Backend/internal/domain"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestDestination_DeepLinks(t *testing.T) {
	link := &domain.Link{
		DestinationURL:     "https://example.com/app",
		IOSURL:             strp("myapp://open"),
		IOSFallbackURL:     strp("https://apps.apple.com/app/id1"),
		AndroidFallbackURL: strp("https://play.google.com/store/apps/details?id=x"),
	}

	assert.Equal(t, "myapp://open", Destination(link, PlatformIOS))
	assert.Equal(t, "https://play.google.com/store/apps/details?id=x", Destination(link, PlatformAndroid))
	assert.Equal(t, "https://example.com/app", Destination(link, PlatformOther))

	link.IOSURL = nil
	assert.Equal(t, "https://apps.apple.com/app/id1", Destination(link, PlatformIOS))
	link.IOSFallbackURL = nil
	assert.Equal(t, "https://example.com/app", Destination(link, PlatformIOS))
}

func TestDestination_UTM(t *testing.T) {
	link := &domain.Link{
		DestinationURL: "https://example.com/p?utm_source=old&ref=1",
		IOSURL:         strp("myapp://open"),
		UTM:            domain.UTM{Source: strp("newsletter"), Campaign: strp("spring sale")},
	}

	u, err := url.Parse(Destination(link, PlatformOther))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "newsletter", q.Get("utm_source"))
	assert.Equal(t, "spring sale", q.Get("utm_campaign"))
	assert.Equal(t, "1", q.Get("ref"))
	assert.Equal(t, "/p", u.Path)

	assert.Equal(t, "myapp://open", Destination(link, PlatformIOS), "app schemes are left untouched")
}

func TestPlatformFromOS(t *testing.T) {
	assert.Equal(t, PlatformIOS, PlatformFromOS("iOS"))
	assert.Equal(t, PlatformAndroid, PlatformFromOS("Android"))
	assert.Equal(t, PlatformOther, PlatformFromOS("Windows"))
	assert.Equal(t, PlatformOther, PlatformFromOS("unknown"))
}
