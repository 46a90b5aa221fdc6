// Package console is the terminal side of the reminder: single key commands
// in, a one line status display out.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"breakreminder/internal/application/dto"
	"breakreminder/internal/domain/constant"
	appErrors "breakreminder/internal/pkg/errors"
	"breakreminder/internal/pkg/logger"
)

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// Dispatcher applies a command. service.ReminderService satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd constant.Command) (dto.CommandResponse, error)
}

// KeyCommand maps a key press to its command. Letters are case-insensitive;
// unmapped keys give CommandUnknown. A, B, E and H are left unmapped: they
// previewed named desktop sounds, and a terminal has only the bell.
func KeyCommand(b byte) constant.Command {
	switch b {
	case 'p', 'P':
		return constant.CommandPlayNow
	case 'f', 'F':
		return constant.CommandChangeFrequency
	case 'l', 'L':
		return constant.CommandChangeLeadTime
	case 'q', 'Q', 'x', 'X', 'c', 'C', keyEscape, keyCtrlC:
		return constant.CommandQuit
	default:
		return constant.CommandUnknown
	}
}

// Keyboard reads key presses and dispatches their commands.
type Keyboard struct {
	in         io.Reader
	dispatcher Dispatcher
	log        logger.Logger
}

// NewKeyboard creates a keyboard surface reading from in. in should be a
// terminal in raw mode so keys arrive without Enter.
func NewKeyboard(in io.Reader, dispatcher Dispatcher, log logger.Logger) *Keyboard {
	return &Keyboard{in: in, dispatcher: dispatcher, log: log}
}

// Run reads keys until a quit key, end of input, or ctx is done. End of
// input only ends this surface; it does not quit the reminder.
func (k *Keyboard) Run(ctx context.Context) error {
	br := bufio.NewReader(k.in)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				k.log.Info("Keyboard input closed.")
				return nil
			}
			return fmt.Errorf("failed to read keyboard input: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}

		// A lone Escape quits; Escape followed by more buffered input is a
		// terminal sequence such as an arrow key.
		if b == keyEscape && br.Buffered() > 0 {
			skipEscapeSequence(br)
			continue
		}

		cmd := KeyCommand(b)
		if cmd == constant.CommandUnknown {
			continue
		}
		k.log.Debug(fmt.Sprintf("Key %q -> %s", b, cmd))
		if _, err := k.dispatcher.Dispatch(ctx, cmd); err != nil {
			k.logFailure(cmd, err)
		}
		if cmd == constant.CommandQuit {
			return nil
		}
	}
}

func (k *Keyboard) logFailure(cmd constant.Command, err error) {
	if errors.Is(err, appErrors.ErrRateLimited) && !errors.Is(err, appErrors.ErrAlertDelivery) {
		k.log.Warn(fmt.Sprintf("Command %s: %v", cmd, err))
		return
	}
	k.log.Error(fmt.Sprintf("Command %s failed", cmd), err)
}

// skipEscapeSequence consumes a CSI or SS3 sequence after its ESC byte.
func skipEscapeSequence(br *bufio.Reader) {
	b, err := br.ReadByte()
	if err != nil || (b != '[' && b != 'O') {
		return
	}
	for br.Buffered() > 0 {
		b, err = br.ReadByte()
		if err != nil || (b >= 0x40 && b <= 0x7e) {
			return
		}
	}
}
