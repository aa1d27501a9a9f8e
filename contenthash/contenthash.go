// Package contenthash computes content-addressed keys for text.
package contenthash

import (
	"crypto/md5"
	"encoding/hex"
)

// Sum returns the lowercase hex MD5 digest of text. MD5 is used for speed,
// not for security; the result is only a cache and deduplication key.
func Sum[T ~string | ~[]byte](text T) string {
	h := md5.Sum([]byte(text))
	return hex.EncodeToString(h[:])
}
