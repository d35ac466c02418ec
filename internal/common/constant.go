package common

// Header names shared by the HTTP API and the terminal client.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
)

// BearerScheme is the authorization scheme carrying session tokens.
const BearerScheme = "Bearer"
