package billing

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const suffixLen = 5

// Numbers generates human-readable document numbers. Invoice numbers are
// INV-YYYYMMDD-XXXXX, payment numbers PAY-<unix milliseconds>. Neither is globally
// unique on its own: stores enforce uniqueness per store and the service retries.
type Numbers struct {
	rand io.Reader

	mu     sync.Mutex
	lastMS int64
}

func NewNumbers() *Numbers {
	return &Numbers{rand: rand.Reader}
}

// Invoice returns a number stamped with now's UTC date and a random suffix.
func (n *Numbers) Invoice(now time.Time) (string, error) {
	buf := make([]byte, suffixLen)
	if _, err := io.ReadFull(n.rand, buf); err != nil {
		return "", fmt.Errorf("reading random suffix: %w", err)
	}

	var sb strings.Builder

	sb.WriteString("INV-")
	sb.WriteString(now.UTC().Format("20060102"))
	sb.WriteByte('-')

	for _, b := range buf {
		sb.WriteByte(suffixAlphabet[int(b)%len(suffixAlphabet)])
	}

	return sb.String(), nil
}

// Payment returns a timestamp number that strictly increases within this process,
// even when called twice in the same millisecond.
func (n *Numbers) Payment(now time.Time) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= n.lastMS {
		ms = n.lastMS + 1
	}

	n.lastMS = ms

	return fmt.Sprintf("PAY-%d", ms)
}
