package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"texdiag/internal/diag"
	"texdiag/internal/fnenc"
	"texdiag/internal/logparse"
	"texdiag/internal/source"
	"texdiag/internal/state"
	"texdiag/internal/texlog"
)

// Options are shared by every project of a run.
type Options struct {
	// Root overrides the root file derived from the log name.
	Root string
	// Store provides source content; nil creates a private store.
	Store *source.Store
	// State persists last batches; nil disables persistence.
	State *state.Store
	// Repairer fixes legacy-encoded file names; nil disables repair.
	Repairer *fnenc.Repairer
}

// Project ties one root file to its parsers and collections.
// Parse calls on a Project must not overlap.
type Project struct {
	Root string

	latex  *logparse.LaTeXParser
	bibtex *logparse.BibTeXParser
	biber  *logparse.BiberParser

	cols   [len(texlog.Families)]*diag.Collection
	parser *texlog.Parser
	state  *state.Store
}

// RootFor returns the root .tex file for a log: the override when set,
// otherwise the log path with a .tex extension.
func RootFor(logPath, override string) string {
	if override != "" {
		return override
	}
	ext := filepath.Ext(logPath)
	return strings.TrimSuffix(logPath, ext) + ".tex"
}

// NewProject wires parsers and collections for root.
func NewProject(root string, opts Options) *Project {
	store := opts.Store
	if store == nil {
		store = source.NewStore(0)
	}
	p := &Project{
		Root:   root,
		latex:  logparse.NewLaTeXParser(),
		bibtex: logparse.NewBibTeXParser(store),
		biber:  logparse.NewBiberParser(store),
		state:  opts.State,
	}
	sinks := make(map[texlog.Family]diag.Sink, len(texlog.Families))
	for _, f := range texlog.Families {
		p.cols[f] = diag.NewCollection(f.String())
		sinks[f] = p.cols[f]
	}
	pub := &texlog.Publisher{Contents: store}
	if opts.Repairer != nil {
		pub.Repair = opts.Repairer.Repair
		pub.ConvertEncoding = true
	}
	p.parser = texlog.NewParser(texlog.Options{
		LaTeX:     p.latex,
		BibTeX:    p.bibtex,
		Biber:     p.biber,
		Sinks:     sinks,
		Publisher: pub,
	})
	return p
}

// Collections returns the LaTeX, BibTeX and Biber collections in order.
func (p *Project) Collections() []*diag.Collection {
	return p.cols[:]
}

// Restore seeds the parsers with the batches saved by a previous run.
// It reports whether a snapshot was found.
func (p *Project) Restore() (bool, error) {
	if p.state == nil {
		return false, nil
	}
	snap, ok, err := p.state.Load(p.Root)
	if err != nil || !ok {
		return false, err
	}
	p.latex.Restore(snap.Entries(texlog.FamilyLaTeX))
	p.bibtex.Restore(snap.Entries(texlog.FamilyBibTeX))
	p.biber.Restore(snap.Entries(texlog.FamilyBiber))
	return true, nil
}

// Parse processes one build log and saves the resulting batches.
func (p *Project) Parse(ctx context.Context, log string) (skipped bool, err error) {
	skipped = p.parser.Parse(ctx, log, p.Root)
	if err := p.save(); err != nil {
		return skipped, fmt.Errorf("save state: %w", err)
	}
	return skipped, nil
}

func (p *Project) save() error {
	if p.state == nil {
		return nil
	}
	snap := state.NewSnapshot(p.Root)
	snap.Put(texlog.FamilyLaTeX, p.latex.BuildLog())
	snap.Put(texlog.FamilyBibTeX, p.bibtex.BuildLog())
	snap.Put(texlog.FamilyBiber, p.biber.BuildLog())
	return p.state.Save(snap)
}
