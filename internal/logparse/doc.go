// Package logparse implements the per-tool log parsers used by
// texlog.Parser: LaTeX engines, BibTeX and Biber.
//
// Every parser keeps the batch produced by its last Parse call so that a
// skipped build can republish it; Restore seeds that batch from persisted
// state. File names printed relative to the build directory are resolved
// against the directory of the root file.
package logparse
