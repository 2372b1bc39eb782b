// Package accounts persists Yggdrasil account records. The store owns the
// persisted collection; it is the only component that mutates it. Records
// are keyed by (identifier, API URL with trailing slashes stripped) and the
// whole collection is rewritten on every mutation.
//
// Concurrent processes sharing one store file are unsupported: the rewrite
// is atomic (temp file + rename) so readers never see a torn file, but
// interleaved read-modify-write cycles can still lose updates.
package accounts
