// Package passphrase implements the §4.10 passphrase input operation: a
// confirm-twice, echo-disabled prompt on the controlling terminal, with
// precedence for a caller-supplied value or passphrase file per §6.
package passphrase

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// Source resolves a passphrase by precedence: a caller-supplied value, a
// passphrase file, or an interactive terminal prompt.
type Source struct {
	caller []byte
	file   string
	// RequireTTY makes Get fail with wizerr.Passphrase instead of falling
	// back to stdin when /dev/tty is unavailable.
	RequireTTY bool
}

// New returns an empty Source; configure it with SetPassphrase/SetFile
// before calling Get, or leave both unset to always prompt.
func New() *Source { return &Source{} }

// SetPassphrase installs a caller-supplied passphrase, which always wins
// over a file or prompt.
func (s *Source) SetPassphrase(p []byte) { s.caller = append([]byte{}, p...) }

// SetFile installs a passphrase file path, consulted when no
// caller-supplied value is set. Its contents, minus a trailing newline,
// are used verbatim.
func (s *Source) SetFile(path string) { s.file = path }

// Get resolves the passphrase per §6's precedence: caller-supplied wins,
// else passphrase file, else interactive prompt.
func (s *Source) Get() (*buffer.Buffer, error) {
	if s.caller != nil {
		return buffer.FromBytes(s.caller), nil
	}
	if s.file != "" {
		data, err := os.ReadFile(s.file)
		if err != nil {
			return nil, wizerr.Wrap(wizerr.Passphrase, "could not read passphrase file", err)
		}
		data = []byte(strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r"))
		return buffer.FromBytes(data), nil
	}
	return s.prompt()
}

// prompt implements the interactive path: open the controlling terminal,
// disable echo via term.ReadPassword (which saves and restores terminal
// attributes around the read), and ask twice, retrying on mismatch.
func (s *Source) prompt() (*buffer.Buffer, error) {
	tty, fallback, err := openTerminal(s.RequireTTY)
	if err != nil {
		return nil, err
	}
	defer tty.Close()

	for {
		first, err := readSecret(tty, fallback, "Enter passphrase: ")
		if err != nil {
			return nil, wizerr.Wrap(wizerr.Passphrase, "could not read passphrase", err)
		}
		second, err := readSecret(tty, fallback, "Enter same passphrase again: ")
		if err != nil {
			return nil, wizerr.Wrap(wizerr.Passphrase, "could not read passphrase", err)
		}
		if string(first) == string(second) {
			return buffer.FromBytes(first), nil
		}
		fmt.Fprintln(tty, "Passphrases are different. Try again.")
	}
}

// openTerminal opens /dev/tty for prompting, falling back to stdin when
// unavailable and requireTTY is false. fallback reports whether the
// returned file is not a real terminal (so readSecret must fall back to
// plain line reading instead of term.ReadPassword).
func openTerminal(requireTTY bool) (tty *os.File, fallback bool, err error) {
	f, openErr := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if openErr != nil {
		if requireTTY {
			return nil, false, wizerr.New(wizerr.Passphrase, "no controlling terminal available", "")
		}
		return os.Stdin, !term.IsTerminal(int(os.Stdin.Fd())), nil
	}
	return f, !term.IsTerminal(int(f.Fd())), nil
}

// readSecret prompts on tty and reads one line with echo disabled when
// tty is a real terminal, falling back to a plain (echoed) line read
// otherwise.
func readSecret(tty *os.File, fallback bool, label string) ([]byte, error) {
	fmt.Fprint(tty, label)
	if !fallback {
		line, err := term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(tty)
		return line, err
	}
	r := bufio.NewReader(tty)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
