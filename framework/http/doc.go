// Package http provides request and response helpers plus the middleware
// that binds each inbound request to a container request scope.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	page := req.Query("page", "1")
//	price, err := req.QueryInt("price", 0)
//	name := req.RouteParam("name") // requires Chi router
//	val := req.Header("X-Custom")
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)         // raw JSON with status
//	res.Success(data)           // 200 {"data": ...}
//	res.Error(400, "bad input") // {"message": "bad input"}
//	res.NotFound()              // 404 {"message": "Not found."}
//	res.ServerError()           // 500 {"message": "Server Error."}
//
// # Request scopes
//
// RequestScope opens a container request scope for every request and ends
// it after the handler returns. Request beans resolved with r.Context() are
// shared for the rest of that request and closed afterwards.
//
//	router.Middleware(gohttp.RequestScope(c, "X-Request-ID", log))
//
//	// inside a request-scoped factory
//	r, ok := gohttp.RequestFrom(ctx)
package http
