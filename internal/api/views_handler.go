package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/auth"
	"github.com/datalens/catalogd/internal/domain"
	"github.com/datalens/catalogd/internal/export"
	"github.com/datalens/catalogd/internal/repository"
	"github.com/datalens/catalogd/internal/tabular"
	"github.com/datalens/catalogd/internal/view"
)

// reservedColumns are the view columns every asset projects, prepended to
// whatever the asset type's schema declares.
var reservedColumns = []tabular.Column{
	{Name: domain.ColumnName, Label: "Name"},
	{Name: domain.ColumnType, Label: "Type"},
	{Name: domain.ColumnSystem, Label: "System"},
	{Name: domain.ColumnPath, Label: "Path"},
	{Name: domain.ColumnDescription, Label: "Description"},
}

type createViewPayload struct {
	OrganizationID string `json:"organizationId"`
	AssetType      string `json:"assetType"`
	System         string `json:"system"`
	Limit          int    `json:"limit"`
}

type setFilterPayload struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

type setSearchPayload struct {
	Term string `json:"term"`
}

type cycleSortPayload struct {
	Column string `json:"column"`
}

func (a *API) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var payload createViewPayload
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

	limit := payload.Limit
	if limit <= 0 || limit > 5000 {
		limit = 5000
	}

	filter := &domain.AssetFilter{
		AssetType: domain.AssetType(strings.ToUpper(strings.TrimSpace(payload.AssetType))),
		System:    strings.TrimSpace(payload.System),
	}

	assets, _, err := a.assets.List(r.Context(), orgID, filter, limit, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	columns := a.viewColumns(r, orgID, filter.AssetType)
	records := make([]tabular.Record, len(assets))
	for i, asset := range assets {
		records[i] = asset.ToRecord()
	}

	session := a.views.Create(columns, records)
	log.Printf("[VIEW] session %s created (%d records, %d columns)", session.ID(), len(records), len(columns))
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

// viewColumns combines the reserved asset columns with the asset type's
// declared schema fields, when one exists.
func (a *API) viewColumns(r *http.Request, orgID uuid.UUID, assetType domain.AssetType) []tabular.Column {
	columns := append([]tabular.Column(nil), reservedColumns...)
	if assetType == "" {
		return columns
	}

	schema, err := a.schemas.GetByAssetType(r.Context(), orgID, assetType)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("[VIEW] schema lookup for %s failed: %v", assetType, err)
		}
		return columns
	}

	declared := columnNameSet(columns)
	for _, col := range schema.Columns() {
		if _, dup := declared[col.Name]; dup {
			continue
		}
		columns = append(columns, col)
	}
	return columns
}

func columnNameSet(columns []tabular.Column) map[string]struct{} {
	set := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		set[col.Name] = struct{}{}
	}
	return set
}

func (a *API) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*view.Session, bool) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	session, ok := a.views.Get(id)
	if !ok {
		http.Error(w, fmt.Sprintf("view %s not found", id), http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (a *API) handleGetView(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (a *API) handleCloseView(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !a.views.Close(id) {
		http.Error(w, fmt.Sprintf("view %s not found", id), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSetViewFilter(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var payload setFilterPayload
	if err := decodeBody(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Column) == "" {
		http.Error(w, "column is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, session.SetFilter(payload.Column, payload.Values))
}

func (a *API) handleSetViewSearch(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var payload setSearchPayload
	if err := decodeBody(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, session.SetSearch(payload.Term))
}

func (a *API) handleCycleViewSort(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var payload cycleSortPayload
	if err := decodeBody(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Column) == "" {
		http.Error(w, "column is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, session.CycleSort(payload.Column))
}

func (a *API) handleClearView(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.ClearFilters())
}

func (a *API) handleViewColumns(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.FilterableColumns())
}

func (a *API) handleExportView(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := session.Snapshot()
	fileName := format.FileName(export.DefaultBaseName("view", time.Now()))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := a.exporter.Write(w, format, state.Columns, state.View.Records); err != nil {
		// Headers are already out; the broken download is all we can signal.
		log.Printf("[VIEW] export of session %s failed: %v", session.ID(), err)
	}
}
