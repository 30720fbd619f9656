// Package router implements the request-dispatch core of the edge
// router.
//
// A Router owns an ordered list of request handlers and an ordered
// list of error handlers. On each inbound event it runs the
// request-handler chain in registration order, synthesizes not-found
// or method-not-allowed conditions when nothing claims the request,
// and falls back to the error-handler chain (terminated by a built-in
// default handler) on any failure. The accumulated response state is
// then serialized into the wire-level response.
//
// # Usage
//
//	rt := router.New(router.Options{Auto405: true})
//
//	rt.Get("/items/:id", func(ctx context.Context, req *event.Request, res *event.ResponseBuilder) error {
//	    return res.JSON(http.StatusOK, map[string]string{"id": req.Param("id")})
//	})
//
//	resp := rt.Dispatch(ctx, req)
//
// # Matching rules
//
// Path matching takes precedence over method matching: a method
// mismatch is only reported when the path itself matched, otherwise
// the route is invisible to the request. When at least one route's
// path matched but none accepted the method, the dispatch resolves to
// 405 (with an Allow header aggregating every matching route's
// methods) rather than 404.
package router
