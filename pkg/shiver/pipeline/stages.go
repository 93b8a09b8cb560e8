package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/shiver/pkg/shiver/blob"
	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/dispatch"
	"github.com/cognicore/shiver/pkg/shiver/extract"
	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/mapping"
	"github.com/cognicore/shiver/pkg/shiver/records"
	"github.com/cognicore/shiver/pkg/shiver/workspace"
)

// Ingest extracts text from each upload and adds one uploaded item per
// file. A file that cannot be read yields a failed outcome and no item. A
// failed blob upload keeps the item, annotated, and still reports the error.
func (p *Pipeline) Ingest(ctx context.Context, label content.Label, uploads []extract.Upload, progress ProgressFunc) (Report, error) {
	label = label.Normalize()
	if label == "" {
		return Report{Stage: StageIngest}, fmt.Errorf("%w: a context label is required", internalerr.ErrInvalidInput)
	}

	items := make([]*content.Item, len(uploads))
	rep := p.runner.Each(ctx, StageIngest, len(uploads), func(ctx context.Context, i int) Outcome {
		it, err := p.ingestOne(ctx, label, uploads[i])
		items[i] = it
		o := Outcome{Err: err}
		if it != nil {
			o.ID = it.ID
		}
		return o
	}, progress)

	// Items are added in upload order whatever the concurrency.
	for i, it := range items {
		rep.Outcomes[i].Name = uploads[i].FileName
		if it == nil {
			continue
		}
		if err := p.ws.AddItem(it); err != nil {
			rep.Outcomes[i].Err = err
		}
	}

	p.logReport(rep)
	return rep, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, label content.Label, up extract.Upload) (*content.Item, error) {
	res, err := p.extractors.Extract(ctx, up)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	it := &content.Item{
		ID:          p.newID(),
		FileName:    up.FileName,
		Label:       label,
		ContentType: res.ContentType,
		RawContent:  res.Text,
		Status:      content.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if p.blob == nil || !(res.Binary || p.uploadText) {
		return it, nil
	}
	ref, err := p.blob.Upload(ctx, blob.Object{
		Bucket:      p.bucket,
		Folder:      p.folder,
		Name:        up.FileName,
		ContentType: res.ContentType,
		Data:        up.Data,
	})
	if err != nil {
		it.Annotation = "upload failed: " + err.Error()
		return it, fmt.Errorf("upload %s: %w", up.FileName, err)
	}
	it.Blob = &content.BlobRef{Bucket: ref.Bucket, Path: ref.Path, URL: ref.URL}
	return it, nil
}

// Parse runs lexical extraction on uploaded items.
func (p *Pipeline) Parse(ctx context.Context, ids []string, progress ProgressFunc) Report {
	rep := p.runner.Run(ctx, StageParse, ids, p.parseOne, progress)
	p.logReport(rep)
	return rep
}

// ParseAll parses every uploaded item.
func (p *Pipeline) ParseAll(ctx context.Context, progress ProgressFunc) Report {
	return p.Parse(ctx, p.ws.IDs(content.StatusUploaded), progress)
}

func (p *Pipeline) parseOne(_ context.Context, id string) error {
	it, err := p.expect(id, content.StatusUploaded)
	if err != nil {
		return err
	}

	route := dispatch.Resolve(it.Label)
	a := p.analyzer.Analyze(route.Branch, it.RawContent)

	status := content.StatusParsed
	_, err = p.ws.UpdateItem(id, workspace.Patch{
		Status: &status,
		Parsed: &content.ParsedData{
			Entities:       a.Entities,
			WordCount:      a.WordCount,
			CharacterCount: a.CharacterCount,
			ParsedAt:       p.now().UTC(),
		},
		Confidence:  &a.Confidence,
		Suggestions: a.Suggestions,
	})
	return err
}

// Map builds a draft record for parsed items.
func (p *Pipeline) Map(ctx context.Context, ids []string, progress ProgressFunc) Report {
	rep := p.runner.Run(ctx, StageMap, ids, p.mapOne, progress)
	p.logReport(rep)
	return rep
}

// MapAll maps every parsed item.
func (p *Pipeline) MapAll(ctx context.Context, progress ProgressFunc) Report {
	return p.Map(ctx, p.ws.IDs(content.StatusParsed), progress)
}

func (p *Pipeline) mapOne(_ context.Context, id string) error {
	it, err := p.expect(id, content.StatusParsed)
	if err != nil {
		return err
	}
	draft, err := p.Draft(it)
	if err != nil {
		return err
	}
	status := content.StatusMapped
	_, err = p.ws.UpdateItem(id, workspace.Patch{Status: &status, Mapped: draft})
	return err
}

// Draft builds the record an item maps to without touching the workspace.
// A custom template named like the item's label picks the shape and fills
// empty fields.
func (p *Pipeline) Draft(it *content.Item) (records.Record, error) {
	shape := dispatch.Resolve(it.Label).Shape
	tpl, custom := p.templates.Get(string(it.Label))
	if custom {
		shape = tpl.Kind
	}
	draft := p.mapper.Build(shape, mapping.InputFrom(it))
	if !custom {
		return draft, nil
	}
	return mapping.ApplyDefaults(draft, tpl.Fields)
}

// Approve marks mapped items as reviewed.
func (p *Pipeline) Approve(ctx context.Context, ids []string) Report {
	rep := p.runner.Run(ctx, StageApprove, ids, func(_ context.Context, id string) error {
		if _, err := p.expect(id, content.StatusMapped); err != nil {
			return err
		}
		status := content.StatusReviewed
		_, err := p.ws.UpdateItem(id, workspace.Patch{Status: &status})
		return err
	}, nil)
	p.logReport(rep)
	return rep
}

// ApproveSelected approves the selected items that are still mapped.
func (p *Pipeline) ApproveSelected(ctx context.Context) Report {
	var ids []string
	for _, id := range p.ws.Selected() {
		if it, err := p.ws.Get(id); err == nil && it.Status == content.StatusMapped {
			ids = append(ids, id)
		}
	}
	return p.Approve(ctx, ids)
}

// Save adds every selected reviewed item to its collection. Items that
// fail stay reviewed; their siblings still reach saved. One notification
// summarises the batch.
func (p *Pipeline) Save(ctx context.Context, progress ProgressFunc) (Report, error) {
	var ids []string
	for _, id := range p.ws.Selected() {
		if it, err := p.ws.Get(id); err == nil && it.Status == content.StatusReviewed {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		p.notifier.Error("Select at least one reviewed item to save")
		return Report{Stage: StageSave}, fmt.Errorf("%w: no reviewed items selected", internalerr.ErrInvalidInput)
	}

	rep := p.runner.Run(ctx, StageSave, ids, p.saveOne, progress)
	p.logReport(rep)

	failed := len(rep.Failed())
	saved := len(ids) - failed
	if failed == 0 {
		p.notifier.Success(fmt.Sprintf("Saved %d %s to collections", saved, plural(saved, "item")))
	} else {
		p.notifier.Error(fmt.Sprintf("Failed to save %d of %d %s", failed, len(ids), plural(len(ids), "item")))
	}
	return rep, nil
}

func (p *Pipeline) saveOne(ctx context.Context, id string) error {
	it, err := p.expect(id, content.StatusReviewed)
	if err != nil {
		return err
	}
	stored, err := p.store.Add(ctx, it.Mapped)
	if err != nil {
		return fmt.Errorf("add %s: %w", it.Mapped.Kind(), err)
	}
	status := content.StatusSaved
	savedID := stored.Meta().ID
	_, err = p.ws.UpdateItem(id, workspace.Patch{Status: &status, SavedID: &savedID, Mapped: stored})
	return err
}

// expect loads id and checks it is in the status a stage consumes.
func (p *Pipeline) expect(id string, want content.Status) (*content.Item, error) {
	it, err := p.ws.Get(id)
	if err != nil {
		return nil, err
	}
	if it.Status != want {
		return nil, fmt.Errorf("%w: %s is %s, want %s", internalerr.ErrWrongStage, id, it.Status, want)
	}
	return it, nil
}

func (p *Pipeline) logReport(rep Report) {
	failed := rep.Failed()
	entry := p.log.WithField("stage", string(rep.Stage)).
		WithField("items", len(rep.Outcomes)).
		WithField("failed", len(failed))
	for _, o := range failed {
		p.log.WithError(o.Err).WithField("stage", string(rep.Stage)).WithField("item", o.ID).WithField("file", o.Name).Warn("stage failed for item")
	}
	entry.Info("stage finished")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return strings.TrimSuffix(word, "s") + "s"
}
