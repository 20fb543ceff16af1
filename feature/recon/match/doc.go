// Package match links statement rows to expected-revenue records.
//
// Statements aggregate by day and placement while receipts are
// per-request, so the link is probabilistic: candidates share a placement
// and sit within two days of the row's event date, and a scorer grades
// each one. Scores at or above the auto threshold are accepted, scores
// down to the review floor are kept for manual review, and everything
// else is dropped. Accepted and review matches land in the warehouse
// match_records table with the row's paid revenue converted to USD and
// split across them.
package match
