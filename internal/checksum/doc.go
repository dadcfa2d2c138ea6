// Package checksum fingerprints upload files.
//
// The SHA-256 of the exact bytes read is logged and printed in the run
// report, so a committed batch can be traced back to the file it came from.
//
// # Example Usage
//
//	hr := checksum.NewReader(f)
//	_, _ = io.Copy(io.Discard, hr)
//	sum, size := hr.Sum(), hr.Size()
//
// # Thread Safety
//
// A Reader is not safe for concurrent use.
package checksum
