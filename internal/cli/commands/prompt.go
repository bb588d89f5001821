package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptLine asks for a line of input, returning def when the answer is empty
func (a *App) promptLine(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(a.Out.Writer(), "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(a.Out.Writer(), "%s: ", label)
	}

	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

// promptPassword reads a password without echo. It requires a terminal.
func (a *App) promptPassword(label string) (string, error) {
	if !a.Interactive {
		return "", fmt.Errorf("%s is required in non-interactive mode", strings.ToLower(label))
	}

	fmt.Fprintf(a.Out.Writer(), "%s: ", label)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.Out.Writer()) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}
