package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpatra/formstore/pkg/types"
)

func TestExistenceProbes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/categories/cat-present":
			w.WriteHeader(http.StatusOK)
		case "/api/categories/cat-absent":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	ok, err := c.CategoryExists(ctx, "cat-present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CategoryExists(ctx, "cat-absent")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.CategoryExists(ctx, "cat-error")
	assert.Error(t, err, "non-404 failures surface as errors")
}

func TestCreateCategoryPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/categories", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("tok-123"))
	err := c.CreateCategory(context.Background(), &types.Category{
		ID:     "cat-1",
		NameEN: "Certificates",
		NameHI: "प्रमाणपत्र",
	})
	require.NoError(t, err)

	assert.Equal(t, "cat-1", got["id"])
	name := got["name"].(map[string]any)
	assert.Equal(t, "Certificates", name["en"])
	assert.Equal(t, "प्रमाणपत्र", name["hi"])
}

func TestUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/files/forms/f1/pdf_en.pdf", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	ok, err := c.FileExists(ctx, "forms/f1/pdf_en.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.UploadFile(ctx, "forms/f1/pdf_en.pdf", []byte("%PDF-1.4")))
}

func TestFormCreateAndUpdateRoutes(t *testing.T) {
	var paths []string
	var lastBody formPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	form := &types.Form{
		ID:            "form-1",
		TitleEN:       "Income Certificate Application",
		CategoryID:    "cat-1",
		InstitutionID: "inst-1",
		Languages:     []string{types.LangEnglish},
		Status:        types.FormPublished,
	}
	fields := []*types.FormField{{
		ID:        "field-1",
		FieldType: types.FieldText,
		LabelEN:   "Full Name",
		Required:  true,
	}}

	require.NoError(t, c.CreateForm(context.Background(), form, fields))
	require.NoError(t, c.UpdateForm(context.Background(), form, fields))

	assert.Equal(t, []string{
		"POST /api/forms",
		"PUT /api/forms/form-1",
	}, paths)
	require.Len(t, lastBody.Fields, 1)
	assert.Equal(t, "Full Name", lastBody.Fields[0].Label.EN)
	assert.True(t, lastBody.Fields[0].Required)
}

func TestUnreachableBackend(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.FormExists(context.Background(), "form-1")
	assert.Error(t, err)
}
