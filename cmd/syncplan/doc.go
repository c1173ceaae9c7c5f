// Package main hosts the syncplan CLI entrypoint and command graph.
//
// The Cobra-based command tree covers one-shot analysis, single-job
// planning, queue maintenance, batch runs, environment checks, and
// configuration scaffolding. Configuration resolution and logger setup are
// centralized in the command context so subcommands stay declarative; the
// heavy lifting lives in the internal packages.
package main
