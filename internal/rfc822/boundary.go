package rfc822

import (
	"fmt"
	"math/rand"
	"os"
	"time"
)

// GenerateBoundary returns a boundary string that is unique in
// practice. It separates content, it is not a secret, so timestamp
// plus a random 32-bit value plus the pid is enough; no CSPRNG
// involved.
func GenerateBoundary() string {
	return fmt.Sprintf("%x.%x.%x", time.Now().UnixNano(), rand.Uint32(), os.Getpid())
}
