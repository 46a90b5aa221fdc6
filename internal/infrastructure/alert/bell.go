package alert

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"breakreminder/internal/domain/entity"
)

// Bell rings the terminal bell by writing BEL characters.
type Bell struct {
	mu    sync.Mutex
	w     io.Writer
	count int
}

// NewBell creates a Bell writing count BEL characters to w per alert.
func NewBell(w io.Writer, count int) *Bell {
	return &Bell{w: w, count: count}
}

func (b *Bell) Fire(_ context.Context, _ entity.Alert) error {
	if b.count <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, strings.Repeat("\a", b.count)); err != nil {
		return fmt.Errorf("failed to ring bell: %w", err)
	}
	return nil
}
