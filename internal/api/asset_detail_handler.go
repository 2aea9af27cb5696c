package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/domain"
	"github.com/datalens/catalogd/internal/middleware"
)

type createAnnotationPayload struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

func (a *API) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	annotations, err := a.annotations.ListByAsset(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, annotations)
}

func (a *API) handleCreateAnnotation(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var payload createAnnotationPayload
	if err := decodeBody(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Body) == "" {
		http.Error(w, "body is required", http.StatusBadRequest)
		return
	}

	// The asset must exist before anything hangs off it.
	if _, err := a.assets.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	created, err := a.annotations.Create(r.Context(), domain.NewAnnotation(id, payload.Author, payload.Body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleDeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	annotationID, err := urlUUID(r, "annotationId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.annotations.Delete(r.Context(), annotationID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createScanPayload struct {
	ScanType       string                 `json:"scanType"`
	RowCount       int64                  `json:"rowCount"`
	RuleResults    []domain.RuleResult    `json:"ruleResults"`
	ColumnProfiles []domain.ColumnProfile `json:"columnProfiles"`
}

func (a *API) handleListScans(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scans, err := a.scans.ListByAsset(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

func (a *API) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var payload createScanPayload
	if err := decodeBody(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := a.assets.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	var scan domain.ScanResult
	switch domain.ScanType(strings.ToUpper(strings.TrimSpace(payload.ScanType))) {
	case domain.ScanTypeQuality:
		scan = domain.NewQualityScan(id, payload.RowCount, payload.RuleResults)
	case domain.ScanTypeProfile:
		scan = domain.NewProfileScan(id, payload.RowCount, payload.ColumnProfiles)
	default:
		http.Error(w, fmt.Sprintf("unknown scanType %q", payload.ScanType), http.StatusBadRequest)
		return
	}

	created, err := a.scans.Create(r.Context(), scan)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleLatestScan(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scanType := domain.ScanType(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type"))))
	if scanType == "" {
		scanType = domain.ScanTypeQuality
	}

	scan, err := a.scans.LatestByAsset(r.Context(), id, scanType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

type addLineageEdgePayload struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	EdgeType string `json:"edgeType"`
}

func (a *API) handleGetLineage(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	depth, err := queryInt(r, "depth", 3)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	direction := domain.LineageDirection(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("direction"))))
	if direction == "" {
		direction = domain.LineageBoth
	}

	var edges []domain.LineageEdge
	if direction == domain.LineageUpstream || direction == domain.LineageBoth {
		upstream, err := a.lineage.Upstream(r.Context(), id, depth)
		if err != nil {
			writeError(w, err)
			return
		}
		edges = append(edges, upstream...)
	}
	if direction == domain.LineageDownstream || direction == domain.LineageBoth {
		downstream, err := a.lineage.Downstream(r.Context(), id, depth)
		if err != nil {
			writeError(w, err)
			return
		}
		edges = append(edges, downstream...)
	}

	graph := domain.LineageGraph{RootID: id, Edges: edges}
	graph.Assets, err = a.hydrateAssets(r, domain.NodeIDs(id, edges))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, graph)
}

func (a *API) handleAddLineageEdge(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var payload addLineageEdgePayload
	if err := decodeBody(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sourceID := id
	targetID := id
	if raw := strings.TrimSpace(payload.SourceID); raw != "" {
		if sourceID, err = uuid.Parse(raw); err != nil {
			http.Error(w, fmt.Sprintf("invalid sourceId: %v", err), http.StatusBadRequest)
			return
		}
	}
	if raw := strings.TrimSpace(payload.TargetID); raw != "" {
		if targetID, err = uuid.Parse(raw); err != nil {
			http.Error(w, fmt.Sprintf("invalid targetId: %v", err), http.StatusBadRequest)
			return
		}
	}
	if sourceID == targetID {
		http.Error(w, "edge must connect two distinct assets", http.StatusBadRequest)
		return
	}

	edgeType := domain.EdgeType(strings.ToUpper(strings.TrimSpace(payload.EdgeType)))
	switch edgeType {
	case domain.EdgeTypeDerives, domain.EdgeTypeCopies, domain.EdgeTypeConsumes:
	default:
		http.Error(w, fmt.Sprintf("unknown edgeType %q", payload.EdgeType), http.StatusBadRequest)
		return
	}

	created, err := a.lineage.AddEdge(r.Context(), domain.NewLineageEdge(sourceID, targetID, edgeType))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleRemoveLineageEdge(w http.ResponseWriter, r *http.Request) {
	edgeID, err := urlUUID(r, "edgeId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.lineage.RemoveEdge(r.Context(), edgeID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// hydrateAssets resolves node IDs through the request-scoped batch loader
// when present, falling back to a direct repository fetch.
func (a *API) hydrateAssets(r *http.Request, ids []uuid.UUID) ([]domain.Asset, error) {
	if loader := middleware.AssetLoaderFromContext(r.Context()); loader != nil {
		return loader.LoadMany(r.Context(), ids)
	}
	return a.assets.GetByIDs(r.Context(), ids)
}
