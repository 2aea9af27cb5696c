package ingestion

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func multipartUpload(t *testing.T, fileName, fileBody string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(fileBody)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestHandlerHonorsHeaderRowIndex(t *testing.T) {
	handler := NewHTTPHandler(NewService(newMemorySchemaRepo(), &memoryAssetRepo{}))

	csvData := strings.Join([]string{
		"Export generated 2026-08-30,,",
		"name,row_count,partitioned",
		"orders,1200,true",
		"users,85,false",
	}, "\n")

	body, contentType := multipartUpload(t, "tables.csv", csvData, map[string]string{
		"organizationId": uuid.NewString(),
		"assetType":      "TABLE",
		"system":         "BigQuery",
		"headerRowIndex": "1",
	})

	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	var summary Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalRows != 2 || summary.ValidRows != 2 {
		t.Fatalf("expected the preamble row to be skipped, got %+v", summary)
	}
}

func TestHandlerRejectsBadHeaderRowIndex(t *testing.T) {
	handler := NewHTTPHandler(NewService(newMemorySchemaRepo(), &memoryAssetRepo{}))

	body, contentType := multipartUpload(t, "tables.csv", "name\norders\n", map[string]string{
		"organizationId": uuid.NewString(),
		"assetType":      "TABLE",
		"headerRowIndex": "-1",
	})

	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative headerRowIndex, got %d", rec.Code)
	}
}
