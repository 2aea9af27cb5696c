package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/domain"
)

type favoriteListResponse struct {
	Favorites []domain.Favorite `json:"favorites"`
	Assets    []domain.Asset    `json:"assets"`
}

func (a *API) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	subject, err := subjectKey(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	marks, err := a.favorites.List(r.Context(), subject)
	if err != nil {
		writeError(w, err)
		return
	}

	ids := make([]uuid.UUID, len(marks))
	for i, mark := range marks {
		ids[i] = mark.AssetID
	}

	// Hydrate through the batch loader; favorites referencing deleted
	// assets simply drop out of the asset list.
	assets, err := a.hydrateAssets(r, ids)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, favoriteListResponse{
		Favorites: marks,
		Assets:    assets,
	})
}

func (a *API) handlePutFavorite(w http.ResponseWriter, r *http.Request) {
	subject, err := subjectKey(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	assetID, err := urlUUID(r, "assetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := a.assets.GetByID(r.Context(), assetID); err != nil {
		writeError(w, err)
		return
	}

	favorite, err := a.favorites.Put(r.Context(), subject, assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favorite)
}

func (a *API) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	subject, err := subjectKey(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	assetID, err := urlUUID(r, "assetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.favorites.Remove(r.Context(), subject, assetID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
