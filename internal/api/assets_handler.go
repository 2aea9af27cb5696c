package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/auth"
	"github.com/datalens/catalogd/internal/domain"
	"github.com/datalens/catalogd/pkg/validator"
)

var pathManager = validator.NewPathManager()

type createAssetPayload struct {
	OrganizationID string         `json:"organizationId"`
	Name           string         `json:"name"`
	AssetType      string         `json:"assetType"`
	System         string         `json:"system"`
	Path           string         `json:"path"`
	Description    string         `json:"description"`
	Tags           []string       `json:"tags"`
	Properties     map[string]any `json:"properties"`
}

type updateAssetPayload struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Path        *string         `json:"path"`
	Tags        *[]string       `json:"tags"`
	Properties  *map[string]any `json:"properties"`
}

type assetListResponse struct {
	Assets []domain.Asset `json:"assets"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func (a *API) handleListAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	orgID, err := uuid.Parse(strings.TrimSpace(query.Get("organizationId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid organizationId: %v", err), http.StatusBadRequest)
		return
	}
	if err := auth.EnforceOrganizationScope(r.Context(), orgID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	filter := &domain.AssetFilter{
		AssetType:  domain.AssetType(strings.ToUpper(strings.TrimSpace(query.Get("type")))),
		System:     strings.TrimSpace(query.Get("system")),
		TextSearch: strings.TrimSpace(query.Get("q")),
	}
	for _, raw := range query["property"] {
		filter.PropertyFilters = append(filter.PropertyFilters, parsePropertyFilter(raw))
	}

	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	assets, total, err := a.assets.List(r.Context(), orgID, filter, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assetListResponse{
		Assets: assets,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// parsePropertyFilter decodes "key:value" into an equality filter, "key"
// alone into an existence filter.
func parsePropertyFilter(raw string) domain.PropertyFilter {
	key, value, found := strings.Cut(raw, ":")
	filter := domain.PropertyFilter{Key: strings.TrimSpace(key)}
	if found {
		filter.Value = strings.TrimSpace(value)
	} else {
		exists := true
		filter.Exists = &exists
	}
	return filter
}

func (a *API) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var payload createAssetPayload
	if err := decodeBody(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	orgID, err := uuid.Parse(strings.TrimSpace(payload.OrganizationID))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid organizationId: %v", err), http.StatusBadRequest)
		return
	}
	if err := auth.EnforceOrganizationScope(r.Context(), orgID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	assetType := domain.AssetType(strings.ToUpper(strings.TrimSpace(payload.AssetType)))
	if assetType == "" {
		http.Error(w, "assetType is required", http.StatusBadRequest)
		return
	}
	if payload.Path != "" {
		if err := pathManager.ValidatePath(payload.Path); err != nil {
			http.Error(w, fmt.Sprintf("invalid path: %v", err), http.StatusBadRequest)
			return
		}
	}

	asset := domain.NewAsset(orgID, payload.Name, assetType, payload.System, payload.Path, payload.Properties)
	if payload.Description != "" {
		asset = asset.WithDescription(payload.Description)
	}
	if len(payload.Tags) > 0 {
		asset = asset.WithTags(payload.Tags)
	}

	created, err := a.assets.Create(r.Context(), asset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := a.assets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (a *API) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var payload updateAssetPayload
	if err := decodeBody(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := a.assets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := auth.EnforceOrganizationScope(r.Context(), asset.OrganizationID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	if payload.Name != nil && strings.TrimSpace(*payload.Name) != "" {
		asset.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		asset = asset.WithDescription(*payload.Description)
	}
	if payload.Path != nil {
		if *payload.Path != "" {
			if err := pathManager.ValidatePath(*payload.Path); err != nil {
				http.Error(w, fmt.Sprintf("invalid path: %v", err), http.StatusBadRequest)
				return
			}
		}
		asset = asset.WithPath(*payload.Path)
	}
	if payload.Tags != nil {
		asset = asset.WithTags(*payload.Tags)
	}
	if payload.Properties != nil {
		for key, value := range *payload.Properties {
			if value == nil {
				asset = asset.WithoutProperty(key)
			} else {
				asset = asset.WithProperty(key, value)
			}
		}
	}

	updated, err := a.assets.Update(r.Context(), asset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.assets.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGetAssetSchema(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := a.assets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	schema, err := a.schemas.GetByAssetType(r.Context(), asset.OrganizationID, asset.AssetType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}
