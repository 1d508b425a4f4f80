// Package testutil provides shared helpers for constructing health data
// fixtures and canned completion replies in tests.
package testutil
