// Package testutil holds deterministic stand-ins for time, sleeping and id
// generation, plus the golden-file helper shared by package tests.
package testutil
