package backup

import (
	"bytes"
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpatra/formstore/internal/blob"
	"github.com/openpatra/formstore/internal/engine"
	"github.com/openpatra/formstore/internal/repo"
	"github.com/openpatra/formstore/pkg/types"
)

func newTestState(t *testing.T) (*engine.Engine, blob.Store, *repo.Store) {
	t.Helper()
	dir := t.TempDir()

	snapshots, err := blob.NewFSStore(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)
	files, err := blob.NewFSStore(filepath.Join(dir, "files"))
	require.NoError(t, err)

	eng, err := engine.NewManager(filepath.Join(dir, "data"), snapshots).Engine(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	return eng, files, repo.New(eng, files, nil)
}

func seedState(t *testing.T, s *repo.Store) (categoryID, formID string) {
	t.Helper()
	categoryID, err := s.Categories().Create(repo.CategoryInput{NameEN: "Certificates"})
	require.NoError(t, err)
	instID, err := s.Institutions().Create(repo.InstitutionInput{
		NameEN: "District Collectorate",
		Type:   types.InstitutionGovernment,
	})
	require.NoError(t, err)
	formID, err = s.Forms().Create(repo.FormInput{
		TitleEN:       "Income Certificate Application",
		CategoryID:    categoryID,
		InstitutionID: instID,
	})
	require.NoError(t, err)
	require.NoError(t, s.Forms().AttachPDF(formID, types.LangEnglish, []byte("%PDF-1.4 english variant")))
	require.NoError(t, s.Forms().AttachThumbnail(formID, types.LangEnglish, []byte("jpeg bytes")))
	return categoryID, formID
}

func TestEncodeChunkedMatchesOnePass(t *testing.T) {
	sizes := []int{0, 1, 2, 3, chunkSize - 1, chunkSize, chunkSize + 1, 3*chunkSize + 7}
	for _, n := range sizes {
		data := bytes.Repeat([]byte{0xAB}, n)
		assert.Equal(t, base64.StdEncoding.EncodeToString(data), encodeChunked(data), "size %d", n)
	}
}

func TestCreateBundle(t *testing.T) {
	eng, files, s := newTestState(t)
	seedState(t, s)

	bundle, err := New(eng, files).Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Version, bundle.Version)
	assert.NotEmpty(t, bundle.CreatedAt)
	assert.NotEmpty(t, bundle.Database)
	require.Len(t, bundle.Files, 2, "one pdf and one thumbnail")
	for _, f := range bundle.Files {
		assert.Equal(t, "arraybuffer", f.Type)
		_, err := base64.StdEncoding.DecodeString(f.Data)
		assert.NoError(t, err)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	eng, files, s := newTestState(t)
	categoryID, formID := seedState(t, s)

	b := New(eng, files)
	bundle, err := b.Create(context.Background())
	require.NoError(t, err)

	// Diverge: drop the form and add an extra category.
	require.NoError(t, s.Forms().Delete(formID))
	_, err = s.Categories().Create(repo.CategoryInput{NameEN: "Licenses"})
	require.NoError(t, err)

	res := b.Restore(context.Background(), bundle)
	require.True(t, res.Success, res.Message)

	// Record state is back to what the bundle held.
	f, err := s.Forms().Get(formID)
	require.NoError(t, err)
	assert.Equal(t, "Income Certificate Application", f.TitleEN)

	cats, err := s.Categories().List()
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, categoryID, cats[0].ID)

	// File blobs came back byte for byte.
	pdf, err := files.Get(f.PDFVariants[types.LangEnglish])
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 english variant"), pdf)

	keys, err := files.List("")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestRestoreValidatesBeforeMutating(t *testing.T) {
	eng, files, s := newTestState(t)
	_, formID := seedState(t, s)
	b := New(eng, files)

	cases := []struct {
		name   string
		bundle *Bundle
	}{
		{"nil bundle", nil},
		{"wrong version", &Bundle{Version: 2, Database: "QUJD"}},
		{"no database", &Bundle{Version: Version}},
		{"bad base64 database", &Bundle{Version: Version, Database: "!!not-base64!!"}},
		{"bad base64 file", &Bundle{
			Version:  Version,
			Database: "QUJD",
			Files:    []File{{Path: "x", Data: "!!"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := b.Restore(context.Background(), tc.bundle)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Message)

			// Pre-restore state is untouched.
			_, err := s.Forms().Get(formID)
			assert.NoError(t, err)
			keys, err := files.List("")
			require.NoError(t, err)
			assert.Len(t, keys, 2)
		})
	}
}

func TestBundleJSONContract(t *testing.T) {
	bundle := &Bundle{
		Version:   Version,
		CreatedAt: "2026-08-28T00:00:00Z",
		Database:  "QUJD",
		Files:     []File{{Path: "forms/f1/pdf_en.pdf", Data: "QQ==", Type: "arraybuffer"}},
	}

	var buf bytes.Buffer
	require.NoError(t, bundle.Encode(&buf))

	// Field names are a wire contract shared with external tooling.
	for _, want := range []string{`"version":1`, `"createdAt"`, `"database"`, `"path"`, `"data"`, `"type"`} {
		assert.Contains(t, buf.String(), want)
	}

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, bundle, decoded)
}
