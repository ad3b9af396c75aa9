// Package dbsync pushes local portal state to the remote backend in ordered
// phases. The sync is one-way and additive: local records are created or
// updated on the remote, never deleted, and a failure on one item never
// aborts the run.
package dbsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/openpatra/formstore/internal/repo"
	"github.com/openpatra/formstore/pkg/types"
)

// Sync phases, in push order. Referenced entities go before their referrers
// so the remote never sees a form whose category is missing.
const (
	PhaseCategories   = "categories"
	PhaseInstitutions = "institutions"
	PhaseFiles        = "files"
	PhaseForms        = "forms"
	PhaseComplete     = "complete"
)

// defaultCallTimeout bounds every individual remote call.
const defaultCallTimeout = 30 * time.Second

// Progress is the per-item sync report delivered to the progress callback.
type Progress struct {
	Phase       string
	Current     int
	Total       int
	CurrentItem string
	Errors      []string
}

// ProgressFunc receives a Progress after every item. May be nil.
type ProgressFunc func(Progress)

// Result is the outcome of a sync run. Success is true when the run reached
// the end and the backend answered at least once; per-item errors alone do
// not fail the run. Errors lists every item that failed.
type Result struct {
	Success bool
	Message string
	Errors  []string
}

// Remote is the backend surface the sync engine drives. Existence checks are
// by local id (files by path); the backend's storage model is opaque here.
type Remote interface {
	CategoryExists(ctx context.Context, id string) (bool, error)
	CreateCategory(ctx context.Context, c *types.Category) error

	InstitutionExists(ctx context.Context, id string) (bool, error)
	CreateInstitution(ctx context.Context, i *types.Institution) error

	FileExists(ctx context.Context, path string) (bool, error)
	UploadFile(ctx context.Context, path string, data []byte) error

	FormExists(ctx context.Context, id string) (bool, error)
	CreateForm(ctx context.Context, f *types.Form, fields []*types.FormField) error
	UpdateForm(ctx context.Context, f *types.Form, fields []*types.FormField) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCallTimeout overrides the per-remote-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// Engine runs phased one-way syncs from the local store to a Remote.
type Engine struct {
	store       *repo.Store
	remote      Remote
	logger      *slog.Logger
	callTimeout time.Duration
}

// New creates a sync engine over the local store and a remote backend.
func New(store *repo.Store, remote Remote, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		remote:      remote,
		logger:      slog.Default(),
		callTimeout: defaultCallTimeout,
	}
	for _, fn := range opts {
		fn(e)
	}
	return e
}

// run tracks the shared state of one sync pass.
type run struct {
	onProgress ProgressFunc
	errors     []string

	reached   bool  // the backend answered at least one call
	transport error // first connection-level failure seen
}

func (r *run) report(phase string, current, total int, item string) {
	if r.onProgress == nil {
		return
	}
	r.onProgress(Progress{
		Phase:       phase,
		Current:     current,
		Total:       total,
		CurrentItem: item,
		// Callbacks may retain the slice; hand each report its own copy.
		Errors: append([]string(nil), r.errors...),
	})
}

func (r *run) fail(phase, item string, err error) {
	r.errors = append(r.errors, fmt.Sprintf("%s %s: %v", phase, item, err))
}

// observe classifies a remote call's outcome. Any answer from the backend,
// error or not, counts as reached; connection-level failures do not.
func (r *run) observe(err error) error {
	switch {
	case err == nil:
		r.reached = true
	case unreachable(err):
		if r.transport == nil {
			r.transport = err
		}
	default:
		r.reached = true
	}
	return err
}

// unreachable reports whether err happened below the protocol: the
// connection itself failed and the backend never saw the request.
func unreachable(err error) bool {
	var op *net.OpError
	return errors.As(err, &op)
}

// SyncToRemote pushes categories, institutions, files, and forms to the
// remote, in that order. Each item failure is collected and the run
// continues; cancellation, a local read failure, or a backend that never
// answered a single call fails the run as a whole.
func (e *Engine) SyncToRemote(ctx context.Context, onProgress ProgressFunc) Result {
	r := &run{onProgress: onProgress}
	started := time.Now()
	e.logger.Info("dbsync: starting sync")

	phases := []func(context.Context, *run) error{
		e.syncCategories,
		e.syncInstitutions,
		e.syncFiles,
		e.syncForms,
	}
	for _, phase := range phases {
		if err := phase(ctx, r); err != nil {
			e.logger.Error("dbsync: sync aborted", "error", err)
			return Result{Success: false, Message: err.Error(), Errors: r.errors}
		}
	}

	if !r.reached && r.transport != nil {
		e.logger.Error("dbsync: remote unreachable", "error", r.transport)
		return Result{
			Success: false,
			Message: fmt.Sprintf("remote unreachable: %v", r.transport),
			Errors:  r.errors,
		}
	}

	r.report(PhaseComplete, 0, 0, "")
	msg := fmt.Sprintf("synced with %d errors", len(r.errors))
	e.logger.Info("dbsync: sync finished",
		"errors", len(r.errors),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return Result{Success: true, Message: msg, Errors: r.errors}
}

// call runs one remote operation under the per-call timeout and records its
// outcome on the run.
func (e *Engine) call(ctx context.Context, r *run, fn func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return r.observe(fn(cctx))
}

func (e *Engine) syncCategories(ctx context.Context, r *run) error {
	cats, err := e.store.Categories().List()
	if err != nil {
		return fmt.Errorf("listing local categories: %w", err)
	}
	for i, c := range cats {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.pushCategory(ctx, r, c); err != nil {
			r.fail(PhaseCategories, c.ID, err)
			e.logger.Warn("dbsync: category push failed", "id", c.ID, "error", err)
		}
		r.report(PhaseCategories, i+1, len(cats), c.NameEN)
	}
	return nil
}

func (e *Engine) pushCategory(ctx context.Context, r *run, c *types.Category) error {
	var exists bool
	err := e.call(ctx, r, func(cctx context.Context) error {
		var err error
		exists, err = e.remote.CategoryExists(cctx, c.ID)
		return err
	})
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return e.call(ctx, r, func(cctx context.Context) error {
		return e.remote.CreateCategory(cctx, c)
	})
}

func (e *Engine) syncInstitutions(ctx context.Context, r *run) error {
	insts, err := e.store.Institutions().List()
	if err != nil {
		return fmt.Errorf("listing local institutions: %w", err)
	}
	for i, inst := range insts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.pushInstitution(ctx, r, inst); err != nil {
			r.fail(PhaseInstitutions, inst.ID, err)
			e.logger.Warn("dbsync: institution push failed", "id", inst.ID, "error", err)
		}
		r.report(PhaseInstitutions, i+1, len(insts), inst.NameEN)
	}
	return nil
}

func (e *Engine) pushInstitution(ctx context.Context, r *run, inst *types.Institution) error {
	var exists bool
	err := e.call(ctx, r, func(cctx context.Context) error {
		var err error
		exists, err = e.remote.InstitutionExists(cctx, inst.ID)
		return err
	})
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return e.call(ctx, r, func(cctx context.Context) error {
		return e.remote.CreateInstitution(cctx, inst)
	})
}

func (e *Engine) syncFiles(ctx context.Context, r *run) error {
	keys, err := e.store.Files().List("")
	if err != nil {
		return fmt.Errorf("listing local files: %w", err)
	}
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.pushFile(ctx, r, key); err != nil {
			r.fail(PhaseFiles, key, err)
			e.logger.Warn("dbsync: file push failed", "path", key, "error", err)
		}
		r.report(PhaseFiles, i+1, len(keys), key)
	}
	return nil
}

func (e *Engine) pushFile(ctx context.Context, r *run, key string) error {
	var exists bool
	err := e.call(ctx, r, func(cctx context.Context) error {
		var err error
		exists, err = e.remote.FileExists(cctx, key)
		return err
	})
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	data, err := e.store.Files().Get(key)
	if err != nil {
		return fmt.Errorf("reading local file: %w", err)
	}
	return e.call(ctx, r, func(cctx context.Context) error {
		return e.remote.UploadFile(cctx, key, data)
	})
}

func (e *Engine) syncForms(ctx context.Context, r *run) error {
	forms, err := e.store.Forms().List()
	if err != nil {
		return fmt.Errorf("listing local forms: %w", err)
	}
	for i, f := range forms {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.pushForm(ctx, r, f); err != nil {
			r.fail(PhaseForms, f.ID, err)
			e.logger.Warn("dbsync: form push failed", "id", f.ID, "error", err)
		}
		r.report(PhaseForms, i+1, len(forms), f.TitleEN)
	}
	return nil
}

// pushForm creates or updates the form with its full field list. Forms are
// the one entity that updates on re-sync: their counters and publication
// state change locally between runs.
func (e *Engine) pushForm(ctx context.Context, r *run, f *types.Form) error {
	fields, err := e.store.Fields().ListByForm(f.ID)
	if err != nil {
		return fmt.Errorf("listing local fields: %w", err)
	}

	var exists bool
	err = e.call(ctx, r, func(cctx context.Context) error {
		var err error
		exists, err = e.remote.FormExists(cctx, f.ID)
		return err
	})
	if err != nil {
		return err
	}
	if exists {
		return e.call(ctx, r, func(cctx context.Context) error {
			return e.remote.UpdateForm(cctx, f, fields)
		})
	}
	return e.call(ctx, r, func(cctx context.Context) error {
		return e.remote.CreateForm(cctx, f, fields)
	})
}
