// Package assembler builds bounded HealthContext projections over a user's
// memory. An Assembler fans several scoped searches out through the fail-open
// memory client, merges the results into a single context object and enforces
// a serialized size budget by summarizing history when the raw assembly runs
// over. Assembly never fails: every sub-fetch degrades to an empty default.
package assembler
