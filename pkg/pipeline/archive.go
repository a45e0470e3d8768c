package pipeline

import (
	"context"

	"github.com/matzehuels/decksmith/pkg/aggregate"
	"github.com/matzehuels/decksmith/pkg/archive"
	"github.com/matzehuels/decksmith/pkg/compose"
	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/display"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/observability"
	"github.com/matzehuels/decksmith/pkg/progress"
)

// archiveJob is one image entry to acquire.
type archiveJob struct {
	label string
	ref   string
	name  string
	front int // index of the front job for a back face, -1 otherwise
}

// archiveJobs lists the entries of an archive export: card copies with their
// back faces, then tokens.
func archiveJobs(d *deck.Deck, unique bool) []archiveJob {
	var jobs []archiveJob
	for _, g := range aggregate.GroupItems(d) {
		units := aggregate.Expand(g)
		if unique {
			units = aggregate.ExpandUnique(g)
		}
		for _, u := range units {
			opts := archive.NameOptions{Ordinal: u.Ordinal, Copy: u.Copy}
			front := len(jobs)
			jobs = append(jobs, archiveJob{
				label: u.Name,
				ref:   display.ItemFront(u.Item),
				name:  archive.FileName(u.Name, opts),
				front: -1,
			})
			if back, ok := display.ItemBack(u.Item); ok {
				opts.Back = true
				jobs = append(jobs, archiveJob{
					label: u.Name + " (back)",
					ref:   back,
					name:  archive.FileName(u.Name, opts),
					front: front,
				})
			}
		}
	}
	for _, g := range aggregate.CollectTokens(d) {
		for _, u := range aggregate.ExpandTokens(g) {
			jobs = append(jobs, archiveJob{
				label: "Token: " + u.Name,
				ref:   display.TokenImage(u.Token),
				name:  archive.FileName(u.Name, archive.NameOptions{Token: true, Ordinal: u.Ordinal}),
				front: -1,
			})
		}
	}
	return jobs
}

// ExportArchive acquires every card copy, back face and token of d and packs
// the images into a zip archive.
//
// Each distinct image reference is fetched once per run, and a failing
// reference is reported once, under the label of the first unit that used it.
// When a front face fails its back face is skipped as well and the pair
// counts as one failure. Units whose names collide after snake-casing get a
// numeric suffix.
func (r *Runner) ExportArchive(ctx context.Context, d *deck.Deck, opts Options) (res *Result, err error) {
	start := r.now()
	jobs := archiveJobs(d, opts.Unique)
	observability.Pipeline().OnExportStart(ctx, FormatArchive, len(jobs))
	defer func() { r.finish(ctx, FormatArchive, start, res, err) }()

	r.Logger.Info("exporting archive", "deck", d.Name, "images", len(jobs))

	b := archive.NewBuilder(start)
	memo := newImageMemo()
	failed := make([]bool, len(jobs))
	reported := make(map[string]bool)
	var failures []string

	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if j.front >= 0 && failed[j.front] {
			failed[i] = true
		} else {
			px, err := memo.get(j.ref, func() (*compose.Pixels, error) {
				return r.Acquirer.Acquire(ctx, j.ref, false)
			})
			switch {
			case err != nil && ctx.Err() != nil:
				return nil, ctx.Err()
			case err != nil:
				failed[i] = true
				if !reported[j.ref] {
					reported[j.ref] = true
					failures = append(failures, j.label)
					r.failed(ctx, j.label, err)
				}
			default:
				name := b.Unique(j.name)
				if err := b.Add(name, px.Data); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInternal, err, "add %s", name)
				}
			}
		}
		opts.Progress.Emit(progress.Progress{Current: i + 1, Total: len(jobs), Label: j.label})
	}

	if b.Len() == 0 {
		return nil, &errors.EmptyArtifactError{Artifact: "archive", Failures: failures}
	}
	data, err := b.Bytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write archive")
	}
	if len(failures) > 0 {
		r.Logger.Warn("some images could not be acquired", "failed", len(failures))
	}

	return &Result{
		Name:        archive.Name(d.Name),
		ContentType: archive.ContentType,
		Data:        data,
		Failures:    failures,
		Stats: Stats{
			Units:    len(jobs),
			Acquired: b.Len(),
			Failed:   len(failures),
		},
	}, nil
}

// imageMemo remembers the outcome of each reference within one run.
type imageMemo struct {
	pixels map[string]*compose.Pixels
	errs   map[string]error
}

func newImageMemo() *imageMemo {
	return &imageMemo{pixels: make(map[string]*compose.Pixels), errs: make(map[string]error)}
}

func (m *imageMemo) get(key string, load func() (*compose.Pixels, error)) (*compose.Pixels, error) {
	if px, ok := m.pixels[key]; ok {
		return px, nil
	}
	if err, ok := m.errs[key]; ok {
		return nil, err
	}
	px, err := load()
	if err != nil {
		m.errs[key] = err
		return nil, err
	}
	m.pixels[key] = px
	return px, nil
}
