// Package repo implements the repository modules of the formstore data
// layer: one typed accessor per entity family, mapping SQLite rows to the
// records in pkg/types. Every mutating call finishes with an engine Save so
// the durable snapshot trails the live database by at most one operation,
// and invalidates the entity family's cache slot so the next read goes back
// through the repository.
package repo

import (
	"time"

	"github.com/google/uuid"

	"github.com/openpatra/formstore/internal/blob"
	"github.com/openpatra/formstore/internal/cache"
	"github.com/openpatra/formstore/internal/engine"
)

// Cache type keys, one per entity family. List sub-keys vary per query
// (per-id, per-parent) but invalidation always sweeps the whole family.
const (
	CacheUsers        = "users"
	CacheCategories   = "categories"
	CacheInstitutions = "institutions"
	CacheForms        = "forms"
	CacheFormFields   = "form_fields"
	CacheDivisions    = "divisions"
	CacheContacts     = "contacts"
	CacheSubmissions  = "submissions"
	CacheDrafts       = "drafts"
	CacheConfig       = "system_config"
)

// Store bundles the engine handle, the form file store, and the advisory
// read cache, and hands out the typed sub-repositories.
type Store struct {
	eng   *engine.Engine
	files blob.Store
	cache *cache.Cache
}

// New creates a Store. The cache may be nil when no read caching is wanted
// (backup, sync, and tests usually pass nil).
func New(eng *engine.Engine, files blob.Store, c *cache.Cache) *Store {
	return &Store{eng: eng, files: files, cache: c}
}

// Engine exposes the underlying engine handle for the backup bundler.
func (s *Store) Engine() *engine.Engine { return s.eng }

// Files exposes the form file store.
func (s *Store) Files() blob.Store { return s.files }

// Cache exposes the advisory read cache; nil when caching is disabled.
func (s *Store) Cache() *cache.Cache { return s.cache }

// Sub-repository accessors.

func (s *Store) Users() *Users               { return &Users{s} }
func (s *Store) Categories() *Categories     { return &Categories{s} }
func (s *Store) Institutions() *Institutions { return &Institutions{s} }
func (s *Store) Forms() *Forms               { return &Forms{s} }
func (s *Store) Fields() *Fields             { return &Fields{s} }
func (s *Store) Divisions() *Divisions       { return &Divisions{s} }
func (s *Store) Contacts() *Contacts         { return &Contacts{s} }
func (s *Store) Submissions() *Submissions   { return &Submissions{s} }
func (s *Store) Drafts() *Drafts             { return &Drafts{s} }
func (s *Store) Analytics() *Analytics       { return &Analytics{s} }
func (s *Store) Config() *Config             { return &Config{s} }

// saveAndInvalidate concludes a mutation: snapshot to the durable store,
// then drop the mutated family's cache entries.
func (s *Store) saveAndInvalidate(cacheType string) error {
	if err := s.eng.Save(); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateType(cacheType)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows, letting each
// entity use a single row-mapping function.
type rowScanner interface {
	Scan(dest ...any) error
}

// newID generates a UUID v7 entity id, falling back to v4 if the clock
// source fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// nowISO returns the current UTC time as an ISO-8601 string, the timestamp
// format of every table.
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
