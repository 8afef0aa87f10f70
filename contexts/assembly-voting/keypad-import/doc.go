// Package keypadimport implements bulk keypad registration inside the
// assembly-voting context: validation of external records against the
// seat/participant directory and best-effort per-record creation.
package keypadimport
