package middleware

import (
	"context"
	"net/http"

	"github.com/datalens/catalogd/internal/assetloader"
	"github.com/datalens/catalogd/internal/repository"
)

type ctxKey string

const assetLoaderKey ctxKey = "assetLoader"

// DataLoaderMiddleware attaches a fresh asset loader to each request context
// so batched lookups never leak cached assets across requests.
func DataLoaderMiddleware(repo repository.AssetRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := assetloader.NewAssetLoader(repo)

			ctx := context.WithValue(r.Context(), assetLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AssetLoaderFromContext retrieves the request-scoped asset loader, if any.
func AssetLoaderFromContext(ctx context.Context) *assetloader.AssetLoader {
	if l, ok := ctx.Value(assetLoaderKey).(*assetloader.AssetLoader); ok {
		return l
	}
	return nil
}
