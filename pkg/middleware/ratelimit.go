/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	pkgnet "github.com/Juice-Labs/borrow/pkg/net"
)

// RateLimit lets at most rps requests per second through, with bursts of up
// to burst. Everything over the limit is answered with 429. A rps of zero or
// less disables the limit.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	if burst < 1 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reservation := limiter.Reserve()
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(int((delay+time.Second-1)/time.Second)))
				pkgnet.Respond(w, http.StatusTooManyRequests, map[string]string{
					"message": "Too many requests.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
