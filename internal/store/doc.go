// Package store reads and writes flat, comma-delimited record files.
//
// Every store file holds the records of one entity type, one record per line,
// with no header and no escaping:
//
//	1,alice,password1
//	2,bob,hunter2hunter2
//
// A [Codec] maps lines to typed records. Lines with too few fields, or with an
// integer field that does not parse, are skipped on read and reported through
// the optional [SkipFunc]; they never abort a load.
//
// # Mutations
//
// The format has no index, so mutations come in two shapes:
//   - Append writes one or more new lines at the end of the file.
//   - Rewrite replaces the whole file with the given records. The write goes
//     through a temporary file and a rename, so readers see either the old or
//     the new content.
//
// # Identifiers
//
// Ids are assigned from a running counter persisted next to the store file
// in "<path>.seq". The next id is one past the larger of the counter and the
// highest id still present, so ids freed by a delete are never handed out
// again and a batch reservation hands out a contiguous block.
package store
