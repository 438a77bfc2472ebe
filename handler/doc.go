// Package handler provides typed HTTP handlers and the responses they return.
//
// A HandlerFunc receives its request already bound from the path, query or
// JSON body and returns a Response, which renders itself:
//
//	type chatRequest struct {
//		Query string `json:"query"`
//	}
//
//	func chat(ctx handler.Context, req chatRequest) handler.Response {
//		if req.Query == "" {
//			return handler.JSONError(http.StatusBadRequest, "Missing query", nil)
//		}
//		return handler.JSON(map[string]string{"summary": answer})
//	}
//
//	r.Post("/chat", handler.Wrap(chat, handler.WithBinders[chatRequest](handler.BindJSON())))
//
// Error answers always use the {"error": ..., "details": ...} JSON shape
// unless an HTTPError asks for plain text. Fail logs a service error with
// request context and converts it to its response.
package handler
