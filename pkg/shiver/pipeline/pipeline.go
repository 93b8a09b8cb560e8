// Package pipeline drives content items through the five stages:
// upload, parse, map, review and save. Every stage is triggered by the
// caller and reports one outcome per item.
package pipeline

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/shiver/internal/logger"
	"github.com/cognicore/shiver/pkg/shiver/blob"
	"github.com/cognicore/shiver/pkg/shiver/extract"
	"github.com/cognicore/shiver/pkg/shiver/ingest"
	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/mapping"
	"github.com/cognicore/shiver/pkg/shiver/notify"
	"github.com/cognicore/shiver/pkg/shiver/store"
	"github.com/cognicore/shiver/pkg/shiver/templates"
	"github.com/cognicore/shiver/pkg/shiver/workspace"
)

// Stage names a pipeline step.
type Stage string

const (
	StageIngest  Stage = "ingest"
	StageParse   Stage = "parse"
	StageMap     Stage = "map"
	StageApprove Stage = "approve"
	StageSave    Stage = "save"
)

// Options wires a Pipeline. Workspace and Store are required.
type Options struct {
	Workspace *workspace.Workspace
	Store     store.Store

	// Blob receives binary uploads, and text uploads when UploadText is set.
	// Nil disables uploads.
	Blob       blob.Store
	Bucket     string
	Folder     string
	UploadText bool

	Extractors *extract.Registry
	Analyzer   *ingest.Analyzer
	Templates  *templates.Store
	Notifier   notify.Notifier
	Logger     *logger.Logger

	// Concurrency above 1 runs items of a stage in parallel. Now and NewID
	// are then called from several goroutines and must be safe for
	// concurrent use; the default ULID generator is.
	Concurrency int
	Now         func() time.Time
	NewID       func() string
}

// Pipeline runs stages against a workspace.
type Pipeline struct {
	ws         *workspace.Workspace
	store      store.Store
	blob       blob.Store
	bucket     string
	folder     string
	uploadText bool
	extractors *extract.Registry
	analyzer   *ingest.Analyzer
	mapper     *mapping.Mapper
	templates  *templates.Store
	notifier   notify.Notifier
	log        *logger.Logger
	runner     Runner
	now        func() time.Time
	newID      func() string
}

// New validates opts and fills defaults.
func New(opts Options) (*Pipeline, error) {
	if opts.Workspace == nil {
		return nil, fmt.Errorf("%w: pipeline needs a workspace", internalerr.ErrInvalidConfig)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: pipeline needs a collection store", internalerr.ErrInvalidConfig)
	}
	if opts.Blob != nil && opts.Bucket == "" {
		return nil, fmt.Errorf("%w: blob storage needs a bucket", internalerr.ErrInvalidConfig)
	}

	p := &Pipeline{
		ws:         opts.Workspace,
		store:      opts.Store,
		blob:       opts.Blob,
		bucket:     opts.Bucket,
		folder:     opts.Folder,
		uploadText: opts.UploadText,
		extractors: opts.Extractors,
		analyzer:   opts.Analyzer,
		templates:  opts.Templates,
		notifier:   opts.Notifier,
		log:        logger.OrDiscard(opts.Logger).Component("pipeline"),
		runner:     Runner{Concurrency: opts.Concurrency},
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if p.extractors == nil {
		p.extractors = extract.NewRegistry()
	}
	if p.analyzer == nil {
		p.analyzer = ingest.NewAnalyzer(ingest.DefaultVocabulary())
	}
	if p.templates == nil {
		p.templates = templates.NewStore()
	}
	if p.notifier == nil {
		p.notifier = notify.NewLog(opts.Logger)
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = ulidGenerator()
	}
	p.mapper = mapping.New(p.now)
	return p, nil
}

// Workspace returns the workspace the pipeline mutates.
func (p *Pipeline) Workspace() *workspace.Workspace { return p.ws }

func ulidGenerator() func() string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Now(), entropy).String()
	}
}
