package service

import (
	"LinkGate-Backend/internal/domain"
	"net/url"
	"strings"
)

// Platform is the mobile platform a deep link targets.
type Platform string

const (
	PlatformOther   Platform = "other"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// PlatformFromOS maps a parsed OS family onto a deep-link platform.
func PlatformFromOS(os string) Platform {
	switch {
	case os == "iOS" || os == "iPadOS":
		return PlatformIOS
	case strings.HasPrefix(os, "Android"):
		return PlatformAndroid
	}
	return PlatformOther
}

// Destination picks the deep-link target for the platform and appends the link's
// UTM parameters to http(s) targets. Existing query keys with the same name are replaced.
func Destination(link *domain.Link, platform Platform) string {
	target := link.DestinationURL
	switch platform {
	case PlatformIOS:
		target = firstSet(link.IOSURL, link.IOSFallbackURL, &link.DestinationURL)
	case PlatformAndroid:
		target = firstSet(link.AndroidURL, link.AndroidFallbackURL, &link.DestinationURL)
	}
	return applyUTM(target, link.UTM)
}

func firstSet(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return ""
}

func applyUTM(target string, utm domain.UTM) string {
	params := utm.Params()
	if len(params) == 0 {
		return target
	}

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return target
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
