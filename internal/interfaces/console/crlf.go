package console

import (
	"io"
	"sync"
)

// CRLFWriter turns bare "\n" into "\r\n". A terminal in raw mode does not
// return the carriage on line feed, so log lines would otherwise stair-step.
type CRLFWriter struct {
	mu     sync.Mutex
	w      io.Writer
	lastCR bool
}

// NewCRLFWriter wraps w.
func NewCRLFWriter(w io.Writer) *CRLFWriter {
	return &CRLFWriter{w: w}
}

func (c *CRLFWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' && !c.lastCR {
			out = append(out, '\r')
		}
		out = append(out, b)
		c.lastCR = b == '\r'
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
