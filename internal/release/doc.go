// Package release publishes sealed builds under an output root.
//
// Layout:
//
//	<root>/releases/<build_id>/   catalog_master.db, pull_master.db, manifest.json, checksums.txt
//	<root>/releases/.staging-<id> in-progress build, never visible as a release
//	<root>/current/               copy of the latest release
//	<root>/CURRENT_BUILD          build id of current, written last
//	<root>/.build.lock            held for the whole build
//
// A release directory only appears once its databases, checksums and
// manifest are complete. current is swapped in a single rename and
// CURRENT_BUILD is the authoritative pointer.
package release
