package session

import "go.uber.org/fx"

// Module provides the cookie session manager consumed by the auth
// handlers and the AuthRequired middleware.
var Module = fx.Module("auth.session",
	fx.Provide(NewManager),
)
