// Package shiver wires the content pipeline, collection store, blob storage
// and template registry behind one handle.
package shiver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cognicore/shiver/internal/logger"
	"github.com/cognicore/shiver/pkg/shiver/blob"
	"github.com/cognicore/shiver/pkg/shiver/config"
	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/extract"
	"github.com/cognicore/shiver/pkg/shiver/notify"
	"github.com/cognicore/shiver/pkg/shiver/pipeline"
	"github.com/cognicore/shiver/pkg/shiver/search"
	"github.com/cognicore/shiver/pkg/shiver/store"
	"github.com/cognicore/shiver/pkg/shiver/store/memstore"
	"github.com/cognicore/shiver/pkg/shiver/store/sqlite"
	"github.com/cognicore/shiver/pkg/shiver/templates"
	"github.com/cognicore/shiver/pkg/shiver/workspace"
)

// Shiver is the main facade.
type Shiver struct {
	cfg       *config.Config
	log       *logger.Logger
	store     store.Store
	ownStore  bool
	blob      blob.Store
	gcs       *blob.GCS
	templates *templates.Store
	pipeline  *pipeline.Pipeline
	searcher  *search.Searcher
}

// Options configures Open. Store and Blob override what Config selects.
type Options struct {
	Config   *config.Config
	Logger   *logger.Logger
	Notifier notify.Notifier
	Store    store.Store
	Blob     blob.Store
	Now      func() time.Time
	NewID    func() string
}

// Open builds every component from opts.Config, or the defaults.
func Open(ctx context.Context, opts Options) (*Shiver, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.OrDiscard(opts.Logger)

	comp, err := config.NewLoader(cfg).Load()
	if err != nil {
		return nil, err
	}

	tpls := templates.NewStore()
	if cfg.Templates != "" {
		if err := tpls.Load(cfg.Templates); err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
	}

	s := &Shiver{cfg: cfg, log: log.Component("shiver"), templates: tpls}

	s.store = opts.Store
	if s.store == nil {
		if s.store, err = openStore(ctx, cfg); err != nil {
			return nil, err
		}
		s.ownStore = true
	}

	s.blob = opts.Blob
	if s.blob == nil {
		if err := s.openBlob(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}

	var bucket string
	if s.blob != nil {
		bucket = cfg.Storage.Bucket
	}
	s.pipeline, err = pipeline.New(pipeline.Options{
		Workspace:   workspace.New(opts.Now),
		Store:       s.store,
		Blob:        s.blob,
		Bucket:      bucket,
		Folder:      cfg.Storage.Folder,
		UploadText:  cfg.Pipeline.UploadText,
		Extractors:  extract.NewRegistry(),
		Analyzer:    comp.Analyzer,
		Templates:   tpls,
		Notifier:    opts.Notifier,
		Logger:      log,
		Concurrency: cfg.Pipeline.Concurrency,
		Now:         opts.Now,
		NewID:       opts.NewID,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.searcher = search.New(s.store, comp.Tokenizer)

	s.log.WithField("driver", cfg.Storage.Driver).WithField("database", cfg.Database.Path).Debug("shiver ready")
	return s, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Database.Path == "" {
		return memstore.New(), nil
	}
	return sqlite.OpenSQLite(ctx, cfg.Database.Path)
}

func (s *Shiver) openBlob(ctx context.Context) error {
	st := s.cfg.Storage
	var next blob.Store
	switch st.Driver {
	case config.StorageLocal:
		local, err := blob.NewLocal(st.Root, st.BaseURL)
		if err != nil {
			return err
		}
		next = local
	case config.StorageGCS:
		gcs, err := blob.NewGCS(ctx, blob.GCSOptions{
			CredentialsFile: st.CredentialsFile,
			CDNDomain:       st.CDNDomain,
		}, s.log)
		if err != nil {
			return err
		}
		s.gcs = gcs
		next = gcs
	default:
		return nil
	}
	s.blob = blob.Retrying(next, st.RetryFor, s.log)
	return nil
}

// Close releases the store and storage client Open created. A store passed
// in through Options stays open.
func (s *Shiver) Close() error {
	var errs []error
	if s.gcs != nil {
		errs = append(errs, s.gcs.Close())
	}
	if s.ownStore {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

func (s *Shiver) Pipeline() *pipeline.Pipeline    { return s.pipeline }
func (s *Shiver) Workspace() *workspace.Workspace { return s.pipeline.Workspace() }
func (s *Shiver) Store() store.Store              { return s.store }
func (s *Shiver) Templates() *templates.Store     { return s.templates }
func (s *Shiver) Blob() blob.Store                { return s.blob }

// Search ranks stored records against q.
func (s *Shiver) Search(ctx context.Context, q search.Query) ([]search.Hit, error) {
	return s.searcher.Search(ctx, q)
}

// AddTemplate registers a custom template and persists the registry when a
// templates path is configured. A rejected template leaves both untouched.
func (s *Shiver) AddTemplate(name, raw string) (templates.Template, error) {
	t, err := s.templates.Submit(name, raw)
	if err != nil {
		return templates.Template{}, err
	}
	if s.cfg.Templates != "" {
		if err := s.templates.Save(s.cfg.Templates); err != nil {
			return t, fmt.Errorf("save templates: %w", err)
		}
	}
	return t, nil
}

// ImportResult collects the reports of every stage Import ran.
type ImportResult struct {
	Reports []pipeline.Report
}

// Saved returns the ids of the items that reached the collection store.
func (r ImportResult) Saved() []string {
	for _, rep := range r.Reports {
		if rep.Stage == pipeline.StageSave {
			return rep.Succeeded()
		}
	}
	return nil
}

// Err joins the per-item errors of every stage.
func (r ImportResult) Err() error {
	var errs []error
	for _, rep := range r.Reports {
		if err := rep.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rep.Stage, err))
		}
	}
	return errors.Join(errs...)
}

// Import runs uploads through ingest, parse and map. With autoSave the
// selection is replaced by the mapped drafts, which are approved and saved
// as they are; earlier items stay in the workspace untouched.
func (s *Shiver) Import(ctx context.Context, label content.Label, uploads []extract.Upload, autoSave bool, progress pipeline.ProgressFunc) (ImportResult, error) {
	var res ImportResult

	rep, err := s.pipeline.Ingest(ctx, label, uploads, progress)
	if err != nil {
		return res, err
	}
	res.Reports = append(res.Reports, rep)

	rep = s.pipeline.Parse(ctx, rep.Succeeded(), progress)
	res.Reports = append(res.Reports, rep)

	rep = s.pipeline.Map(ctx, rep.Succeeded(), progress)
	res.Reports = append(res.Reports, rep)

	mapped := rep.Succeeded()
	if !autoSave || len(mapped) == 0 {
		return res, nil
	}

	ws := s.pipeline.Workspace()
	ws.ClearSelection()
	for _, id := range mapped {
		if err := ws.Select(id); err != nil {
			return res, err
		}
	}
	res.Reports = append(res.Reports, s.pipeline.Approve(ctx, mapped))

	rep, err = s.pipeline.Save(ctx, progress)
	if err != nil {
		return res, err
	}
	res.Reports = append(res.Reports, rep)
	return res, nil
}
