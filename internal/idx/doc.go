// Package idx parses the IDX binary format used by the MNIST family of
// datasets (http://yann.lecun.com/exdb/mnist/).
//
// A dataset split ships as a pair of gzip-compressed streams, one for images
// and one for labels:
//
//	Image stream:
//	  [4 bytes: Magic 0x00000803 (uint32 BE)]
//	  [4 bytes: Record count N (uint32 BE)]
//	  [4 bytes: Rows (uint32 BE, 28)]
//	  [4 bytes: Cols (uint32 BE, 28)]
//	  [N*784 bytes: pixels, row-major, image-major]
//
//	Label stream:
//	  [4 bytes: Magic 0x00000801 (uint32 BE)]
//	  [4 bytes: Record count N (uint32 BE)]
//	  [N bytes: labels]
//
// The two streams must declare the same record count; a mismatch means the
// pair is corrupted or mismatched and parsing fails with ErrCountMismatch.
// Both streams are consumed in a single sequential pass, so the package works
// on non-seekable readers such as gzip streams.
package idx
