package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, map[string]int{"count": 3})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"count":3}}`, w.Body.String())
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(w, errors.New("deck not found"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrorResponse{Error: "Not Found", Message: "deck not found", Code: 404}, resp)
}

func TestValidationFailed(t *testing.T) {
	w := httptest.NewRecorder()
	ValidationFailed(w, map[string]string{"name": "is required"})

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "is required", resp.Fields["name"])
}

func TestPaginated(t *testing.T) {
	tests := []struct {
		name      string
		pageSize  int
		total     int
		wantPages int
	}{
		{"exact", 10, 30, 3},
		{"remainder", 10, 31, 4},
		{"empty", 10, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Paginated(w, []string{}, 1, tt.pageSize, tt.total)

			var resp PaginatedResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			assert.Equal(t, tt.total, resp.TotalCount)
		})
	}
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	err := Attachment(w, "text/csv", "collection.csv", func(out io.Writer) error {
		_, err := io.WriteString(out, "a,b\n")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="collection.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
