package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"programtrack/internal/member/importer"
	"programtrack/internal/member/models"
	"programtrack/internal/member/service"
	"programtrack/internal/member/store"
	programmodels "programtrack/internal/program/models"
	programstore "programtrack/internal/program/store"
	"programtrack/pkg/testutil"
)

func newMemberRouter(t *testing.T, maxUpload int64) http.Handler {
	t.Helper()
	programs := programstore.NewInMemory()
	require.NoError(t, programs.Create(context.Background(),
		&programmodels.Program{EnglishName: "books", ArabicName: "الكتب", Visible: true}))

	svc := service.New(store.NewInMemory(), programs)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	New(svc, logger, maxUpload).Register(r)
	return r
}

func TestAddListAndVerify(t *testing.T) {
	router := newMemberRouter(t, 1<<20)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/programs/books/members",
		map[string]string{"national_id": "100200300", "full_name": "Sara Ali"}))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/programs/books/members",
		map[string]string{"national_id": "100200300", "full_name": "Sara Ali"}))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/programs/books/members", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	list := testutil.UnmarshalResponse[struct {
		Members []models.Member `json:"members"`
		Summary models.Summary  `json:"summary"`
	}](t, rr)
	require.Len(t, list.Members, 1)
	assert.Equal(t, 1, list.Summary.Total)
	assert.Zero(t, list.Summary.Received)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/programs/books/verify",
		map[string]string{"national_id": "100200300"}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "Sara Ali", testutil.UnmarshalResponse[models.Member](t, rr).FullName)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/programs/books/verify",
		map[string]string{"national_id": "404"}))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/programs/missing/members", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestImport(t *testing.T) {
	sheet := []byte("NationalID,FullName\n1,Sara\n2,Omar\n2,Omar again\n,nobody\n")

	t.Run("multipart upload", func(t *testing.T) {
		router := newMemberRouter(t, 1<<20)
		req := testutil.NewMultipartRequest(t, "/programs/books/members/import", "file", "members.csv", sheet)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, models.ImportResult{Imported: 2, Skipped: 1, Malformed: 1},
			*testutil.UnmarshalResponse[models.ImportResult](t, rr))
	})

	t.Run("raw body upload", func(t *testing.T) {
		router := newMemberRouter(t, 1<<20)
		req := httptest.NewRequest(http.MethodPost, "/programs/books/members/import", bytes.NewReader(sheet))
		req.Header.Set("Content-Type", "text/csv")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("missing file part", func(t *testing.T) {
		router := newMemberRouter(t, 1<<20)
		req := testutil.NewMultipartRequest(t, "/programs/books/members/import", "other", "members.csv", sheet)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "bad_request")
	})

	t.Run("uploaded file must be a csv", func(t *testing.T) {
		router := newMemberRouter(t, 1<<20)
		req := testutil.NewMultipartRequest(t, "/programs/books/members/import", "file", "members.xlsx", sheet)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "validation_error")

		req = testutil.NewMultipartRequest(t, "/programs/books/members/import", "file", "MEMBERS.CSV", sheet)
		testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusOK)
	})

	t.Run("upload over the size limit", func(t *testing.T) {
		router := newMemberRouter(t, 8)
		req := httptest.NewRequest(http.MethodPost, "/programs/books/members/import", bytes.NewReader(sheet))
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "bad_request")
	})

	t.Run("broken sheet", func(t *testing.T) {
		router := newMemberRouter(t, 1<<20)
		req := httptest.NewRequest(http.MethodPost, "/programs/books/members/import",
			strings.NewReader("NationalID,FullName\n1,"+strings.Repeat("a", importer.MaxFieldRunes+1)+"\n"))
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusUnprocessableEntity, "import_failed")
	})
}
