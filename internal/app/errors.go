package app

import (
	"github.com/simp-lee/ginx"

	"github.com/simp-lee/learnhub/internal/pkg"
)

// errorFormatter makes ginx middleware (auth, permission, timeout, rate limit)
// answer with the same envelope as the handlers.
var errorFormatter ginx.ErrorFormatter = func(status int, message string) any {
	return pkg.Response{Code: status, Message: message}
}
