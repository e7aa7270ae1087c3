// Package todo stores, validates and updates per-user tasks.
//
// Tasks live in a flat store file (see package store), one task per line:
//
//	id,date,content,user_id,status
//	1,2024-12-06,buy milk,1,in progress
//	2,2024-12-07,call mom,1,completed
//
// Every [Repository] operation is scoped to a user id: tasks tagged with a
// different user id are invisible to it. The tag is not checked against the
// user directory.
//
// # Task Status Values
//
//   - "in progress": created, not yet done (the default)
//   - "completed": marked done; no operation moves a task back
//
// # Dates
//
// Dates use the calendar layout YYYY-MM-DD and must name a real day, so
// "2024-02-30" and "2024-13-40" are both rejected by [ValidateDate].
//
// # Bulk Import
//
// An import source holds "date,content[,status]" rows. Rows with fewer than
// two fields are skipped. The remaining rows are validated as a batch; if any
// row is invalid nothing is written. Ids for the batch are reserved in one
// step, so a multi-row import never hands out the same id twice.
//
// # Store Validation
//
// [ValidateStore] checks a task file without modifying it: malformed lines,
// duplicate ids, and rows that violate the embedded JSON Schema (draft
// 2020-12, with format assertions so dates are checked too).
package todo
