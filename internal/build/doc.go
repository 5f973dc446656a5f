// Package build runs the master database pipeline: it reads the CSV extract
// once, loads the catalog and pull snapshots in lock-step batches, finalizes
// and cross-checks them, and hands the sealed result to package release.
//
// Run is the single entry point. Everything it needs arrives through Options;
// nothing is read from globals or the environment.
package build
