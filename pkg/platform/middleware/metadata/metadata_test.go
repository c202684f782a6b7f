package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"transparency/pkg/requestcontext"
)

func TestClientMetadata(t *testing.T) {
	var gotID, gotIP, gotClient string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = requestcontext.RequestID(r.Context())
		gotIP = requestcontext.ClientIP(r.Context())
		gotClient = requestcontext.Client(r.Context())
	}))

	t.Run("propagates inbound request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", gotID)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "203.0.113.9", gotIP)
		assert.Contains(t, gotClient, "Firefox 121.0 on ")
	})

	t.Run("generates request id when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.4:5555"
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEmpty(t, gotID)
		assert.Equal(t, "192.0.2.4", gotIP)
	})
}

func TestDescribeUserAgent(t *testing.T) {
	assert.Empty(t, DescribeUserAgent(""))
	assert.Equal(t, "bot: Googlebot",
		DescribeUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
	assert.Contains(t,
		DescribeUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"),
		"(mobile)")
}
