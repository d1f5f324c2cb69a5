package shell

import (
	"errors"
	"strings"

	"github.com/peterh/liner"
)

// Console is a LineReader on the terminal with line editing and history.
// Ctrl-C at a prompt yields ErrInterrupted.
type Console struct {
	state *liner.State
}

func NewConsole() *Console {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	return &Console{state: st}
}

func (c *Console) Prompt(prompt string) (string, error) {
	line, err := c.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		c.state.AppendHistory(line)
	}
	return line, nil
}

// Close restores the terminal mode. It must be called before the process
// exits.
func (c *Console) Close() error {
	return c.state.Close()
}
