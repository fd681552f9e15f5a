package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymodels "voluntr/internal/identity/models"
	"voluntr/internal/storage"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	"voluntr/pkg/testutil"
)

var gifBody = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!")

type stubGuard struct{ account *identitymodels.Account }

func (g stubGuard) RequireAuthenticated(context.Context) (*identitymodels.Account, error) {
	if g.account == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return g.account, nil
}

func newRouter(t *testing.T, guard Guard, maxBytes int64) chi.Router {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir(), "http://localhost:8080", maxBytes)
	require.NoError(t, err)

	h := New(store, guard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterPublic(r)
	h.Register(r)
	return r
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadThenServe(t *testing.T) {
	router := newRouter(t, stubGuard{account: &identitymodels.Account{ID: id.NewAccountID()}}, 1<<20)

	rr := testutil.DoRequest(router, uploadRequest(t, "file", "banner.gif", gifBody))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	file := testutil.UnmarshalResponse[storage.File](t, rr)
	assert.Equal(t, "image/gif", file.ContentType)
	assert.Contains(t, file.URL, "http://localhost:8080/files/")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/files/"+file.Name))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, gifBody, rr.Body.Bytes())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestUploadErrors(t *testing.T) {
	authed := stubGuard{account: &identitymodels.Account{ID: id.NewAccountID()}}

	t.Run("anonymous", func(t *testing.T) {
		router := newRouter(t, stubGuard{}, 1<<20)
		rr := testutil.DoRequest(router, uploadRequest(t, "file", "banner.gif", gifBody))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("missing field", func(t *testing.T) {
		router := newRouter(t, authed, 1<<20)
		rr := testutil.DoRequest(router, uploadRequest(t, "attachment", "banner.gif", gifBody))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("unsupported type", func(t *testing.T) {
		router := newRouter(t, authed, 1<<20)
		rr := testutil.DoRequest(router, uploadRequest(t, "file", "notes.txt", []byte("plain text notes")))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("too large", func(t *testing.T) {
		router := newRouter(t, authed, 16)
		rr := testutil.DoRequest(router, uploadRequest(t, "file", "banner.gif", gifBody))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("unknown file", func(t *testing.T) {
		router := newRouter(t, authed, 1<<20)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/files/missing.png"))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}
