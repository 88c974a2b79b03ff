// Package texlog turns the raw console log of a LaTeX build into
// per-file diagnostics.
//
// A build log may contain output from several tools: latexmk or texify
// wrapping one or more engine runs, BibTeX or Biber in between. Parser
// detects which tools ran, isolates the segment of each tool's last run
// (Trim), hands the segments to the per-tool LogParser collaborators and
// publishes their entries through a Publisher into one diag.Sink per tool
// family.
//
// When latexmk reports every target up to date the log carries no new
// information; Parse then republishes the previous batch of every family
// and reports the build as skipped.
//
// Publisher narrows whole-line ranges with Refine when the entry carries
// an anchor and the source line is available, and optionally repairs
// file names that were printed in a legacy encoding.
package texlog
