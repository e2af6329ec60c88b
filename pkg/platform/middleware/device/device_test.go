package device

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"govdash/pkg/requestcontext"
)

const (
	uaDesktopChrome = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaIPhone        = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaAndroid       = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaGooglebot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

type DeviceSuite struct {
	suite.Suite
}

func TestDeviceSuite(t *testing.T) {
	suite.Run(t, new(DeviceSuite))
}

func (s *DeviceSuite) TestClassify() {
	s.Run("empty agent is desktop", func() {
		s.Equal(requestcontext.DeviceDesktop, Classify(""))
	})
	s.Run("desktop chrome", func() {
		s.Equal(requestcontext.DeviceDesktop, Classify(uaDesktopChrome))
	})
	s.Run("iphone is mobile", func() {
		s.Equal(requestcontext.DeviceMobile, Classify(uaIPhone))
	})
	s.Run("android is mobile", func() {
		s.Equal(requestcontext.DeviceMobile, Classify(uaAndroid))
	})
	s.Run("crawler is bot", func() {
		s.Equal(requestcontext.DeviceBot, Classify(uaGooglebot))
	})
}

func (s *DeviceSuite) TestUserAgentParsing() {
	s.Run("empty user agent returns unknown device", func() {
		s.Equal("Unknown Device", ParseUserAgent(""))
	})

	s.Run("chrome on desktop includes browser and OS", func() {
		result := ParseUserAgent(uaDesktopChrome)
		s.Contains(result, "Chrome")
		s.Contains(result, " on ")
	})

	s.Run("safari on iphone includes platform", func() {
		result := ParseUserAgent(uaIPhone)
		s.Contains(result, "iPhone")
	})

	s.Run("result has no leading or trailing whitespace", func() {
		result := ParseUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
		s.Equal(result, strings.TrimSpace(result))
	})
}

func (s *DeviceSuite) TestMiddleware() {
	var got requestcontext.DeviceClass
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = requestcontext.Device(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("User-Agent", uaIPhone)
	h.ServeHTTP(httptest.NewRecorder(), req)

	s.Equal(requestcontext.DeviceMobile, got)
}
