package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpatra/formstore/internal/blob"
	"github.com/openpatra/formstore/internal/cache"
	"github.com/openpatra/formstore/internal/engine"
	"github.com/openpatra/formstore/pkg/types"
)

// newTestStore boots a fresh engine in a temp dir and wraps it in a Store
// with a live cache, mirroring how the portal wires the layer.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()

	snapshots, err := blob.NewFSStore(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)
	files, err := blob.NewFSStore(filepath.Join(dir, "files"))
	require.NoError(t, err)

	eng, err := engine.NewManager(filepath.Join(dir, "data"), snapshots).Engine(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	return New(eng, files, cache.New(0))
}

func seedCategory(t *testing.T, s *Store) string {
	t.Helper()
	id, err := s.Categories().Create(CategoryInput{
		NameEN: "Certificates",
		NameHI: "प्रमाणपत्र",
	})
	require.NoError(t, err)
	return id
}

func seedInstitution(t *testing.T, s *Store) string {
	t.Helper()
	id, err := s.Institutions().Create(InstitutionInput{
		NameEN: "District Collectorate",
		NameMR: "जिल्हाधिकारी कार्यालय",
		Type:   types.InstitutionGovernment,
	})
	require.NoError(t, err)
	return id
}

// seedForm creates a category, an institution, and a draft form under them.
func seedForm(t *testing.T, s *Store) (formID, categoryID, institutionID string) {
	t.Helper()
	categoryID = seedCategory(t, s)
	institutionID = seedInstitution(t, s)
	formID, err := s.Forms().Create(FormInput{
		TitleEN:       "Income Certificate Application",
		TitleHI:       "आय प्रमाणपत्र आवेदन",
		DescriptionEN: "Apply for an income certificate.",
		CategoryID:    categoryID,
		InstitutionID: institutionID,
		Languages:     []string{types.LangEnglish, types.LangHindi},
	})
	require.NoError(t, err)
	return formID, categoryID, institutionID
}

func seedUser(t *testing.T, s *Store, uid string) string {
	t.Helper()
	id, err := s.Users().Create(UserInput{
		UID:      uid,
		Name:     "Asha Kulkarni",
		Email:    uid + "@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }
