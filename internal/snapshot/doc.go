// Package snapshot persists parsed dataset splits on disk and gates parsing
// behind the cache: a split is parsed at most once per cache path, after
// which every call loads the stored snapshot instead.
//
// The snapshot is a gzip-compressed binary archive holding the two raw
// arrays of a split (pixels and labels):
//
//	Format structure (inside the gzip stream):
//	  [4 bytes: Magic "DKSN"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Record count N (uint32 LE)]
//	  [4 bytes: Record size (uint32 LE, bytes per image)]
//	  [N*record-size bytes: pixel data]
//	  [N bytes: label data]
//
// Writes publish atomically: the archive is written to a temporary file in
// the target directory and renamed into place, so a concurrent reader never
// observes a partially written snapshot. Cross-process mutual exclusion
// beyond that is the caller's responsibility.
package snapshot
