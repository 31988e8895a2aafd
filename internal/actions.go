package textlinks

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
)

// Built-in action names for links.
const (
	ActionOpen = "open"
	ActionCopy = "copy"
	ActionEcho = "echo"
)

func isValidAction(action string) bool {
	switch action {
	case "", ActionOpen, ActionCopy, ActionEcho:
		return true
	}
	return false
}

// Actions turns action names into handlers.
type Actions struct {
	// Out receives payloads of echo links.
	Out io.Writer
	// Open launches a URL. Defaults to the platform browser.
	Open func(url string) error
	// Copy writes to the clipboard.
	Copy   func(text string) error
	Logger zerolog.Logger
}

// DefaultActions wires the browser and system clipboard.
func DefaultActions(out io.Writer, logger zerolog.Logger) Actions {
	return Actions{
		Out:    out,
		Open:   OpenBrowser,
		Copy:   clipboard.WriteAll,
		Logger: logger,
	}
}

// ResolveAction picks the action used when a link names none: URLs open,
// anything else is echoed.
func ResolveAction(action, payload string) string {
	if action != "" {
		return action
	}
	if IsURL(payload) {
		return ActionOpen
	}
	return ActionEcho
}

// Handler returns the handler for the named action.
func (a Actions) Handler(action, payload string) (Handler, error) {
	name := ResolveAction(action, payload)
	logger := a.Logger.With().Str("action", name).Logger()

	switch name {
	case ActionOpen:
		return func(payload string) error {
			logger.Debug().Str("payload", payload).Msg("opening link")
			if a.Open == nil {
				return fmt.Errorf("no opener configured")
			}
			return a.Open(payload)
		}, nil
	case ActionCopy:
		return func(payload string) error {
			logger.Debug().Str("payload", payload).Msg("copying link payload")
			if a.Copy == nil {
				return fmt.Errorf("no clipboard configured")
			}
			return a.Copy(payload)
		}, nil
	case ActionEcho:
		return func(payload string) error {
			logger.Debug().Str("payload", payload).Msg("echoing link payload")
			if a.Out == nil {
				return nil
			}
			_, err := fmt.Fprintln(a.Out, payload)
			return err
		}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
