// Package id generates short random identifiers for transient resources.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// New returns "<prefix>-<12 hex chars>". The result is a valid Docker
// container name when prefix is.
func New(prefix string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		ts := strconv.FormatInt(time.Now().UnixNano(), 16)
		return prefix + "-" + ts[len(ts)-12:]
	}
	return prefix + "-" + hex.EncodeToString(b)
}
