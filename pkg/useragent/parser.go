package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Device types reported by the parser.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// Parser wraps the uap-go User-Agent parser with device type and bot detection
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
	IsBot      bool
}

var botIndicators = []string{
	"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
	"yandexbot", "facebookexternalhit", "facebot", "twitterbot", "linkedinbot",
	"whatsapp", "telegrambot", "skypeuripreview", "discordbot", "slackbot",
	"applebot", "petalbot", "semrushbot", "ahrefsbot", "headlesschrome",
	"bot", "crawler", "spider", "scraper", "curl/", "wget/", "python-requests",
	"go-http-client", "okhttp", "httpclient",
}

// NewParser creates a parser from a uap-core regexes file.
// An empty path uses the definitions bundled with uap-go.
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	if regexFilePath == "" {
		log.Info("User-Agent parser initialized with bundled definitions")
		return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
	}

	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file %s: %w", regexFilePath, err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized successfully", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// ParseUserAgent parses a User-Agent string and returns detailed device information
func (p *Parser) ParseUserAgent(userAgent string) *DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return &DeviceInfo{
			DeviceType: DeviceUnknown,
			Browser:    DeviceUnknown,
			OS:         DeviceUnknown,
		}
	}

	client := p.parser.Parse(userAgent)

	info := &DeviceInfo{
		Browser: formatString(client.UserAgent.Family),
		OS:      formatOSString(client.Os.Family),
	}

	if isBot(client.UserAgent.Family, client.Device.Family, userAgent) {
		info.IsBot = true
		info.DeviceType = DeviceBot
		return info
	}
	info.DeviceType = determineDeviceType(client, userAgent)

	return info
}

func isBot(uaFamily, deviceFamily, userAgent string) bool {
	if deviceFamily == "Spider" {
		return true
	}
	family := strings.ToLower(uaFamily)
	raw := strings.ToLower(userAgent)
	for _, indicator := range botIndicators {
		if strings.Contains(family, indicator) || strings.Contains(raw, indicator) {
			return true
		}
	}
	return false
}

// determineDeviceType determines the device type based on parsed client info and raw User-Agent
func determineDeviceType(client *uaparser.Client, userAgent string) string {
	deviceFamily := client.Device.Family
	if deviceFamily != "" && deviceFamily != "Other" {
		if isTablet(deviceFamily) {
			return DeviceTablet
		}
		if isMobile(deviceFamily) {
			return DeviceMobile
		}
	}

	osFamily := client.Os.Family
	if isMobileOS(osFamily) {
		if isTabletOS(osFamily, userAgent) {
			return DeviceTablet
		}
		return DeviceMobile
	}

	// Keyword fallback for UAs the regexes do not cover
	raw := strings.ToLower(userAgent)
	switch {
	case containsAny(raw, "ipad", "tablet", "kindle", "silk", "playbook"):
		return DeviceTablet
	case containsAny(raw, "mobile", "iphone", "ipod", "android", "blackberry", "windows phone", "opera mini"):
		return DeviceMobile
	}

	return DeviceDesktop
}

func isMobile(deviceFamily string) bool {
	return containsAny(strings.ToLower(deviceFamily), "iphone", "android", "blackberry", "windows phone", "mobile", "phone")
}

func isTablet(deviceFamily string) bool {
	return containsAny(strings.ToLower(deviceFamily), "ipad", "tablet", "kindle", "surface")
}

func isMobileOS(osFamily string) bool {
	switch osFamily {
	case "iOS", "Android", "Windows Phone", "BlackBerry OS", "Firefox OS", "Sailfish OS", "KaiOS":
		return true
	}
	return false
}

// isTabletOS checks if the OS/User-Agent indicates a tablet
func isTabletOS(osFamily, userAgent string) bool {
	switch osFamily {
	case "iOS":
		return strings.Contains(userAgent, "iPad")
	case "Android":
		// Android tablets typically don't have "Mobile" in User-Agent
		return !strings.Contains(userAgent, "Mobile")
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// formatString formats a string, replacing empty with "unknown"
func formatString(s string) string {
	if s == "" || s == "Other" {
		return DeviceUnknown
	}
	return s
}

func formatOSString(osFamily string) string {
	switch osFamily {
	case "", "Other":
		return DeviceUnknown
	case "Mac OS X":
		return "macOS"
	}
	return osFamily
}
