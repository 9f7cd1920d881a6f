// Package workspace manages the scratch directory a remote source is cloned
// into for the duration of one generation run.
//
// Each Manager owns one uniquely named directory so concurrent runs never
// share state. The directory is removed on Cleanup unless the manager was
// created with Keep, which leaves it behind for inspection.
package workspace
