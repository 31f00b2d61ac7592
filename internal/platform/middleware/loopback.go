package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// LoopbackOnly rejects requests whose Host is not a loopback name, which
// stops DNS-rebinding pages from reaching the API, and requests carrying an
// Origin other than a loopback one, which stops cross-site pages from
// driving it.
func LoopbackOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !isLoopbackHost(hostOnly(req.Host)) {
				return echo.NewHTTPError(http.StatusForbidden, "host not allowed")
			}
			if origin := req.Header.Get(echo.HeaderOrigin); origin != "" && !isLoopbackOrigin(origin) {
				return echo.NewHTTPError(http.StatusForbidden, "origin not allowed")
			}
			return next(c)
		}
	}
}

func hostOnly(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return strings.Trim(hostport, "[]")
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// isLoopbackOrigin reports whether origin is an http(s) URL on a loopback
// host. The opaque "null" origin is not.
func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return isLoopbackHost(u.Hostname())
}
