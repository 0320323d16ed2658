package loadgen

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Failure kinds recorded by the accumulator. Transport kinds feed the
// zero-transport-failure readiness check.
const (
	KindHTTPError = "http_error"
	KindTimeout   = "timeout"
	KindRefused   = "connection_refused"
	KindReset     = "connection_reset"
	KindDNS       = "dns_error"
	KindNetwork   = "network_error"
)

// classify maps a request outcome to an error kind. An empty kind means
// success; 2xx and 3xx statuses are successes, anything else is a failure.
func classify(status int, err error) string {
	if err != nil {
		return classifyError(err)
	}
	if status >= 200 && status < 400 {
		return ""
	}
	return KindHTTPError
}

func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindRefused
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return KindReset
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	// String fallback for transports that wrap errno text without the errno.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return KindRefused
	case strings.Contains(msg, "connection reset"):
		return KindReset
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return KindTimeout
	case strings.Contains(msg, "no such host"):
		return KindDNS
	}
	return KindNetwork
}
