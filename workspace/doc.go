// Package workspace stores the files that tools produce while the
// trading pipeline runs: browser screenshots, OCR-converted documents,
// generated reports. Files are grouped by workflow run ID so a run's
// by-products can be listed and fetched together.
//
// Callers depend on the Store interface rather than concrete types so
// persistence can be swapped between the in-memory store (tests, single
// process) and the filesystem store (real runs) without touching calling
// code.
package workspace
