package middleware

import "github.com/aretw0/layoutkit/pkg/ports"

// Middleware allows wrapping a LayoutRepository to add behavior.
type Middleware func(ports.LayoutRepository) ports.LayoutRepository

// Chain wraps repo with mws. The first middleware is the outermost.
func Chain(repo ports.LayoutRepository, mws ...Middleware) ports.LayoutRepository {
	for i := len(mws) - 1; i >= 0; i-- {
		repo = mws[i](repo)
	}
	return repo
}
