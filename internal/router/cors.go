package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/edgefuncs/router/internal/event"
)

// CORS preflight request/response header names.
const (
	headerOrigin         = "Origin"
	headerRequestMethod  = "Access-Control-Request-Method"
	headerRequestHeaders = "Access-Control-Request-Headers"
	headerAllowOrigin    = "Access-Control-Allow-Origin"
	headerAllowMethods   = "Access-Control-Allow-Methods"
	headerAllowHeaders   = "Access-Control-Allow-Headers"
)

// corsPreflight builds the wildcard OPTIONS handler answering CORS
// preflight requests against a trusted-origin list.
//
// A single "*" entry authorizes every origin with the literal "*"
// allow-origin value. Any other list authorizes only a
// case-insensitive match, echoing the trusted entry itself rather than
// the wildcard so credentialed requests stay scoped to that origin.
func corsPreflight(trustedOrigins []string) HandlerFunc {
	allowAll := len(trustedOrigins) == 1 && trustedOrigins[0] == Wildcard

	return func(_ context.Context, req *event.Request, res *event.ResponseBuilder) error {
		allowOrigin := ""

		switch {
		case len(trustedOrigins) == 0:
			// Nothing is trusted.
		case allowAll:
			allowOrigin = Wildcard
		default:
			origin := req.HeaderValue(headerOrigin)
			for _, trusted := range trustedOrigins {
				if strings.EqualFold(trusted, origin) {
					allowOrigin = trusted
					break
				}
			}
		}

		if allowOrigin == "" {
			res.Status(http.StatusForbidden)
			res.End()
			return nil
		}

		if method := req.HeaderValue(headerRequestMethod); method != "" {
			res.SetHeader(headerAllowMethods, method)
		}
		if headers := req.HeaderValue(headerRequestHeaders); headers != "" {
			res.SetHeader(headerAllowHeaders, headers)
		}
		res.SetHeader(headerAllowOrigin, allowOrigin)
		res.Status(http.StatusOK)
		res.End()
		return nil
	}
}
