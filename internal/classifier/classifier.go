// Package classifier derives analytics attributes from the raw request metadata of a click.
package classifier

import (
	"LinkGate-Backend/pkg/useragent"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/url"
	"strings"
)

// Traffic source categories.
const (
	SourceDirect = "direct"
	SourceWeb    = "web"
	SourceEmail  = "email"
)

// Classification is the derived view of one request.
type Classification struct {
	IPHash       string
	IsBot        bool
	DeviceType   string
	OS           string
	Browser      string
	ReferrerHost *string
	Source       string
}

// knownSources maps registrable host suffixes to a platform category.
var knownSources = []struct {
	suffix string
	source string
}{
	{"bing.com", "bing"},
	{"duckduckgo.com", "duckduckgo"},
	{"yahoo.com", "yahoo"},
	{"facebook.com", "facebook"},
	{"fb.com", "facebook"},
	{"fb.me", "facebook"},
	{"instagram.com", "instagram"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"t.co", "twitter"},
	{"linkedin.com", "linkedin"},
	{"lnkd.in", "linkedin"},
	{"reddit.com", "reddit"},
	{"youtube.com", "youtube"},
	{"youtu.be", "youtube"},
	{"tiktok.com", "tiktok"},
	{"pinterest.com", "pinterest"},
	{"pin.it", "pinterest"},
	{"whatsapp.com", "whatsapp"},
	{"wa.me", "whatsapp"},
	{"telegram.org", "telegram"},
	{"t.me", "telegram"},
}

// UserAgentParser is the subset of the UA parser the classifier needs.
type UserAgentParser interface {
	ParseUserAgent(userAgent string) *useragent.DeviceInfo
}

// Classifier is deterministic and holds no mutable state.
type Classifier struct {
	ua   UserAgentParser
	salt string
}

// New creates a classifier. salt is mixed into the IP digest so hashes are not
// comparable across deployments.
func New(ua UserAgentParser, salt string) *Classifier {
	return &Classifier{ua: ua, salt: salt}
}

// Classify derives device, bot, referrer and source attributes plus the IP digest.
func (c *Classifier) Classify(ip string, userAgent, referrer *string) Classification {
	result := Classification{
		IPHash:     c.HashIP(ip),
		DeviceType: useragent.DeviceUnknown,
		OS:         useragent.DeviceUnknown,
		Browser:    useragent.DeviceUnknown,
	}

	if userAgent != nil && *userAgent != "" {
		info := c.ua.ParseUserAgent(*userAgent)
		result.DeviceType = info.DeviceType
		result.OS = info.OS
		result.Browser = info.Browser
		result.IsBot = info.IsBot
	}

	if referrer != nil {
		result.ReferrerHost = ReferrerHost(*referrer)
	}
	result.Source = SourceFor(result.ReferrerHost)

	return result
}

// HashIP returns the hex SHA-256 digest of the salted IP. It is used only to count
// unique visitors and is never reversed.
func (c *Classifier) HashIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if parsed := net.ParseIP(ip); parsed != nil {
		ip = parsed.String()
	}
	sum := sha256.Sum256([]byte(c.salt + "|" + ip))
	return hex.EncodeToString(sum[:])
}

// ReferrerHost extracts the lower-cased host from a referrer URL without a leading
// "www.". Empty or unparseable referrers yield nil.
func ReferrerHost(referrer string) *string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return nil
	}
	u, err := url.Parse(referrer)
	if err != nil || u.Host == "" {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return nil
	}
	return &host
}

// SourceFor categorises a referrer host. No referrer is "direct", unknown hosts are "web".
func SourceFor(host *string) string {
	if host == nil {
		return SourceDirect
	}
	h := *host
	if isGoogleHost(h) {
		return "google"
	}
	for _, known := range knownSources {
		if matchesHost(h, known.suffix) {
			return known.source
		}
	}
	if strings.HasPrefix(h, "mail.") || strings.HasPrefix(h, "webmail.") || matchesHost(h, "outlook.live.com") {
		return SourceEmail
	}
	return SourceWeb
}

// matchesHost reports whether host equals suffix or is a subdomain of it.
func matchesHost(host, suffix string) bool {
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}

// isGoogleHost matches google.<tld>, google.co.<cc> and google.com.<cc>, with any
// subdomain in front. google.evil.com does not match.
func isGoogleHost(host string) bool {
	labels := strings.Split(host, ".")
	n := len(labels)
	switch {
	case n >= 2 && labels[n-2] == "google":
		return isTLDLabel(labels[n-1])
	case n >= 3 && labels[n-3] == "google":
		return (labels[n-2] == "co" || labels[n-2] == "com") && len(labels[n-1]) == 2 && isTLDLabel(labels[n-1])
	}
	return false
}

func isTLDLabel(label string) bool {
	if len(label) < 2 {
		return false
	}
	for _, c := range label {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
