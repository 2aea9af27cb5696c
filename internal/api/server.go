// Package api exposes the catalog over plain JSON HTTP handlers routed
// with chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/datalens/catalogd/internal/export"
	"github.com/datalens/catalogd/internal/favorites"
	"github.com/datalens/catalogd/internal/repository"
	"github.com/datalens/catalogd/internal/view"
)

// API wires repositories and services into HTTP handlers.
type API struct {
	assets      repository.AssetRepository
	schemas     repository.AssetSchemaRepository
	annotations repository.AnnotationRepository
	scans       repository.ScanRepository
	lineage     repository.LineageRepository
	favorites   *favorites.Service
	views       *view.Manager
	exporter    *export.Service
	ingest      http.Handler
}

// Config collects the API's collaborators.
type Config struct {
	Assets      repository.AssetRepository
	Schemas     repository.AssetSchemaRepository
	Annotations repository.AnnotationRepository
	Scans       repository.ScanRepository
	Lineage     repository.LineageRepository
	Favorites   *favorites.Service
	Views       *view.Manager
	Exporter    *export.Service
	Ingest      http.Handler
}

// New creates the API.
func New(cfg Config) *API {
	return &API{
		assets:      cfg.Assets,
		schemas:     cfg.Schemas,
		annotations: cfg.Annotations,
		scans:       cfg.Scans,
		lineage:     cfg.Lineage,
		favorites:   cfg.Favorites,
		views:       cfg.Views,
		exporter:    cfg.Exporter,
		ingest:      cfg.Ingest,
	}
}

// Router builds the route tree.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/assets", func(r chi.Router) {
		r.Get("/", a.handleListAssets)
		r.Post("/", a.handleCreateAsset)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.handleGetAsset)
			r.Put("/", a.handleUpdateAsset)
			r.Delete("/", a.handleDeleteAsset)
			r.Get("/schema", a.handleGetAssetSchema)
			r.Get("/annotations", a.handleListAnnotations)
			r.Post("/annotations", a.handleCreateAnnotation)
			r.Delete("/annotations/{annotationId}", a.handleDeleteAnnotation)
			r.Get("/scans", a.handleListScans)
			r.Post("/scans", a.handleCreateScan)
			r.Get("/scans/latest", a.handleLatestScan)
			r.Get("/lineage", a.handleGetLineage)
			r.Post("/lineage", a.handleAddLineageEdge)
			r.Delete("/lineage/{edgeId}", a.handleRemoveLineageEdge)
		})
	})

	r.Route("/views", func(r chi.Router) {
		r.Post("/", a.handleCreateView)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.handleGetView)
			r.Delete("/", a.handleCloseView)
			r.Post("/filter", a.handleSetViewFilter)
			r.Post("/search", a.handleSetViewSearch)
			r.Post("/sort", a.handleCycleViewSort)
			r.Post("/clear", a.handleClearView)
			r.Get("/columns", a.handleViewColumns)
			r.Get("/export", a.handleExportView)
		})
	})

	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", a.handleListFavorites)
		r.Put("/{assetId}", a.handlePutFavorite)
		r.Delete("/{assetId}", a.handleDeleteFavorite)
	})

	if a.ingest != nil {
		r.Method(http.MethodPost, "/ingest", a.ingest)
	}

	return r
}
