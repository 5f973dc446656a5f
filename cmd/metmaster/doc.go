// Package main hosts the metmaster CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the logger, and
// hands off to the internal packages: build runs the pipeline, while status,
// verify, releases and manifest inspect what an output root holds. Keep the
// commands thin; behavior belongs in internal/.
package main
