// Package integration exercises the data layer end to end: engine boot,
// repositories, backup/restore, and sync against a fake HTTP backend.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpatra/formstore/internal/blob"
	"github.com/openpatra/formstore/internal/engine"
	"github.com/openpatra/formstore/internal/repo"
	"github.com/openpatra/formstore/pkg/types"
)

// portal is one fully wired local data layer over a temp directory.
type portal struct {
	dataDir   string
	snapshots blob.Store
	files     blob.Store
	eng       *engine.Engine
	store     *repo.Store
}

// setupPortal boots a fresh portal in an isolated temp directory.
func setupPortal(t *testing.T) *portal {
	t.Helper()
	return openPortal(t, t.TempDir())
}

// openPortal boots (or re-boots) a portal over an existing data directory,
// the same path a process restart takes.
func openPortal(t *testing.T, dataDir string) *portal {
	t.Helper()

	snapshots, err := blob.NewFSStore(filepath.Join(dataDir, "snapshots"))
	require.NoError(t, err)
	files, err := blob.NewFSStore(filepath.Join(dataDir, "files"))
	require.NoError(t, err)

	eng, err := engine.NewManager(filepath.Join(dataDir, "live"), snapshots).Engine(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	return &portal{
		dataDir:   dataDir,
		snapshots: snapshots,
		files:     files,
		eng:       eng,
		store:     repo.New(eng, files, nil),
	}
}

// seedPortal loads a small but complete portal: a category, an institution
// with a division and contact, and a published form with a field and a PDF.
func seedPortal(t *testing.T, p *portal) (categoryID, institutionID, formID string) {
	t.Helper()
	s := p.store

	categoryID, err := s.Categories().Create(repo.CategoryInput{
		NameEN: "Certificates",
		NameHI: "प्रमाणपत्र",
	})
	require.NoError(t, err)

	institutionID, err = s.Institutions().Create(repo.InstitutionInput{
		NameEN: "District Collectorate",
		Type:   types.InstitutionGovernment,
	})
	require.NoError(t, err)

	divisionID, err := s.Divisions().Create(repo.DivisionInput{
		InstitutionID: institutionID,
		NameEN:        "Revenue Branch",
	})
	require.NoError(t, err)
	_, err = s.Contacts().Create(repo.ContactInput{
		DivisionID:    divisionID,
		InstitutionID: institutionID,
		Name:          "R. Patil",
		TitleEN:       "Clerk",
	})
	require.NoError(t, err)

	formID, err = s.Forms().Create(repo.FormInput{
		TitleEN:       "Income Certificate Application",
		CategoryID:    categoryID,
		InstitutionID: institutionID,
		Languages:     []string{types.LangEnglish, types.LangHindi},
	})
	require.NoError(t, err)
	_, err = s.Fields().Create(repo.FieldInput{
		FormID:    formID,
		FieldType: types.FieldText,
		LabelEN:   "Full Name",
		Required:  true,
	})
	require.NoError(t, err)
	require.NoError(t, s.Forms().AttachPDF(formID, types.LangEnglish, []byte("%PDF-1.4 seed")))
	require.NoError(t, s.Forms().Publish(formID, ""))

	return categoryID, institutionID, formID
}
