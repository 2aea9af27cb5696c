package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/auth"
	"github.com/datalens/catalogd/internal/domain"
)

// Handler exposes ingestion as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	orgIDRaw := strings.TrimSpace(r.FormValue("organizationId"))
	orgID, err := uuid.Parse(orgIDRaw)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid organization id: %v", err), http.StatusBadRequest)
		return
	}
	if err := auth.EnforceOrganizationScope(r.Context(), orgID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	assetType := domain.AssetType(strings.ToUpper(strings.TrimSpace(r.FormValue("assetType"))))
	if assetType == "" {
		http.Error(w, "assetType is required", http.StatusBadRequest)
		return
	}

	system := strings.TrimSpace(r.FormValue("system"))

	var headerRowIndex *int
	if raw := strings.TrimSpace(r.FormValue("headerRowIndex")); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 {
			http.Error(w, "headerRowIndex must be a non-negative integer", http.StatusBadRequest)
			return
		}
		headerRowIndex = &idx
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	req := Request{
		OrganizationID: orgID,
		AssetType:      assetType,
		System:         system,
		FileName:       header.Filename,
		HeaderRowIndex: headerRowIndex,
		Data:           bytes.NewReader(data),
	}

	summary, err := h.service.Ingest(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
