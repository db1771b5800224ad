package httpkit

import "mywallet/internal/platform/net/middleware"

// Protected groups routes under bearer auth. A nil port leaves them open
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
