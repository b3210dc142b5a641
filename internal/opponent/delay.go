package opponent

import (
	"strings"
	"time"
)

const (
	minTypingDelay = time.Second
	maxTypingDelay = 10 * time.Second
)

// typingDelay approximates how long a person would take to type the reply:
// a base second plus ~100ms per word, with ±20% jitter, clamped to 1-10s.
// Greetings come back faster.
func (c *Client) typingDelay(reply, lastMessage string) time.Duration {
	base := time.Second
	if isSimpleGreeting(lastMessage) {
		base = 500 * time.Millisecond
	}
	words := len(strings.Fields(reply))
	d := base + time.Duration(words)*100*time.Millisecond

	c.mu.Lock()
	jitter := (c.rng.Float64() - 0.5) * 0.4
	c.mu.Unlock()
	d += time.Duration(float64(d) * jitter)

	if d < minTypingDelay {
		d = minTypingDelay
	}
	if d > maxTypingDelay {
		d = maxTypingDelay
	}
	return d
}
