package constant

import "strings"

// Command is a tag delivered by a command surface to the scheduling loop.
type Command int

const (
	CommandUnknown Command = iota
	// CommandPlayNow fires the alert immediately without touching the pending wait.
	CommandPlayNow
	// CommandChangeFrequency cycles the events per hour and reschedules.
	CommandChangeFrequency
	// CommandChangeLeadTime cycles the lead time and reschedules.
	CommandChangeLeadTime
	// CommandQuit stops the loop.
	CommandQuit
)

var commandNames = map[Command]string{
	CommandPlayNow:         "play",
	CommandChangeFrequency: "frequency",
	CommandChangeLeadTime:  "lead-time",
	CommandQuit:            "quit",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCommand maps a command name (as used by the HTTP surface) to its tag.
func ParseCommand(name string) Command {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range commandNames {
		if n == name {
			return c
		}
	}
	return CommandUnknown
}
