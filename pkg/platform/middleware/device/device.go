// Package device classifies the calling client from its User-Agent so views
// can pick a compact layout on phones.
package device

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"govdash/pkg/requestcontext"
)

// Classify maps a User-Agent to a coarse device class. Empty or unparseable
// agents count as desktop.
func Classify(userAgent string) requestcontext.DeviceClass {
	if strings.TrimSpace(userAgent) == "" {
		return requestcontext.DeviceDesktop
	}
	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		return requestcontext.DeviceBot
	case ua.Mobile():
		return requestcontext.DeviceMobile
	default:
		return requestcontext.DeviceDesktop
	}
}

// ParseUserAgent renders a short "Browser on OS" description for logs.
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, os))
}

// Middleware stores the device class in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithDevice(r.Context(), Classify(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
