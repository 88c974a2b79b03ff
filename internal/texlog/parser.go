package texlog

import (
	"context"
	"strconv"
	"strings"

	"texdiag/internal/diag"
	"texdiag/internal/trace"
)

// Options wires a Parser to its collaborators and sinks.
type Options struct {
	LaTeX  LogParser
	BibTeX LogParser
	Biber  LogParser

	// Sinks receive the snapshots; a missing sink drops that family.
	Sinks map[Family]diag.Sink

	Publisher *Publisher
}

// Parser dispatches a raw build log to the per-tool parsers and publishes
// their results. A Parser is not safe for concurrent use: Parse calls for
// one build must be serialized, which keeps the last-batch state of the
// collaborators coherent for skip republication.
type Parser struct {
	parsers [len(Families)]LogParser
	sinks   [len(Families)]diag.Sink
	pub     *Publisher
}

// NewParser creates a dispatcher.
func NewParser(opts Options) *Parser {
	p := &Parser{pub: opts.Publisher}
	if p.pub == nil {
		p.pub = &Publisher{}
	}
	p.parsers[FamilyLaTeX] = opts.LaTeX
	p.parsers[FamilyBibTeX] = opts.BibTeX
	p.parsers[FamilyBiber] = opts.Biber
	for f, s := range opts.Sinks {
		if int(f) < len(p.sinks) {
			p.sinks[f] = s
		}
	}
	return p
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Canonicalize rewrites every line ending to "\n".
func Canonicalize(log string) string {
	return lineEndings.Replace(log)
}

// Parse processes one build log. It reports whether the log is a latexmk
// no-op run, in which case the previous batches were republished unchanged.
// rootFile is passed through to the collaborators.
func (p *Parser) Parse(ctx context.Context, log, rootFile string) bool {
	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")

	log = Canonicalize(log)
	tools := Detect(log)
	span.WithExtra("tools", tools.String())

	// Bibliography and typesetting are independent: both start from the
	// canonical log.
	switch {
	case tools.Has(ToolBibTeX):
		sub := log
		if tools.Has(ToolLatexmk) {
			sub = trimLatexmkBibTeX(log)
		}
		p.run(ctx, FamilyBibTeX, sub, rootFile)
	case tools.Has(ToolBiber):
		sub := log
		if tools.Has(ToolLatexmk) {
			sub = trimLatexmkBiber(log)
		}
		p.run(ctx, FamilyBiber, sub, rootFile)
	}

	switch {
	case tools.Has(ToolLatexmk):
		log = trimLatexmk(log)
		trace.Point(trace.FromContext(ctx), trace.ScopeFamily, "trim", "latexmk", span.ID())
	case tools.Has(ToolTexify):
		log = trimTexify(log)
		trace.Point(trace.FromContext(ctx), trace.ScopeFamily, "trim", "texify", span.ID())
	}

	skipped := false
	if outputWritten.MatchString(log) || fatalError.MatchString(log) {
		p.run(ctx, FamilyLaTeX, log, rootFile)
	} else if skipped = isSkipped(tools); skipped {
		p.republish(ctx)
	}

	span.WithExtra("skipped", strconv.FormatBool(skipped)).End("")
	return skipped
}

// isSkipped reports a latexmk run that found every target up to date.
// A log with any applied rule is a real build even if it also mentions
// up-to-date targets.
func isSkipped(tools Tools) bool {
	return tools.Has(ToolUpToDate) && !tools.Has(ToolLatexmk)
}

func (p *Parser) run(ctx context.Context, f Family, log, rootFile string) {
	lp := p.parsers[f]
	if lp == nil {
		return
	}
	_, span := trace.Start(ctx, trace.ScopeFamily, "parse:"+f.String())
	entries := lp.Parse(log, rootFile)
	p.publish(f, entries)
	span.WithExtra("entries", strconv.Itoa(len(entries))).End("")
}

// republish re-emits the last known batch of every family.
func (p *Parser) republish(ctx context.Context) {
	_, span := trace.Start(ctx, trace.ScopeFamily, "republish")
	for _, f := range Families {
		if lp := p.parsers[f]; lp != nil {
			p.publish(f, lp.BuildLog())
		}
	}
	span.End("")
}

func (p *Parser) publish(f Family, entries []Entry) {
	p.pub.Publish(p.sinks[f], entries, f.Label())
}
