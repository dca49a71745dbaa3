package testutil

import (
	"net/http"
	"time"

	"riskgate/pkg/requestcontext"
)

// WithDeviceID sets the device id the transport middleware would read from
// the X-Device-ID header.
func WithDeviceID(req *http.Request, deviceID string) *http.Request {
	return req.WithContext(requestcontext.WithDeviceID(req.Context(), deviceID))
}

// WithClient sets the client IP and User-Agent the handlers read from context.
func WithClient(req *http.Request, ip, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, userAgent))
}

// WithRequestTime pins the request's notion of now.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
