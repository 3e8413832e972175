package model

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// checksumChunkSize is the read buffer size for hashing model files.
const checksumChunkSize = 8192

// ChecksumMD5 computes the MD5 digest of the file at path, reading it in
// fixed-size chunks. MD5 is kept for parity with the checksums published
// alongside the model artifacts; this is an integrity hint, not a security
// boundary.
func ChecksumMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, checksumChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify compares the MD5 digest of the file at path against expected.
// It never returns an error: an unreadable file or a mismatch both yield
// false, and the caller decides how loud to be about it. A mismatched but
// loadable model is still worth attempting.
func Verify(path string, expected string) bool {
	sum, err := ChecksumMD5(path)
	if err != nil {
		return false
	}
	return strings.EqualFold(sum, strings.TrimSpace(expected))
}
