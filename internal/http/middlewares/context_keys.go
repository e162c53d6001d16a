package middlewares

// Gin context keys. Plain strings because gin's Set/Get key type is string.
const (
	CtxRequestID = "request_id"
	CtxUser      = "auth.user"
	CtxToken     = "auth.token"
)
