package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	textlinks "github.com/Quish-Labs/gh-textlinks/internal"
	"github.com/Quish-Labs/gh-textlinks/internal/tui"
)

// ErrNoLink is returned by click when no link covers the offset.
var ErrNoLink = errors.New("no link")

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	LogLevel string
	LogFile  string
	NoColor  bool
}

// app carries state between the Before hook and the subcommands.
type app struct {
	flags  globalFlags
	src    sourceFlags
	out    io.Writer
	errOut io.Writer
	logger zerolog.Logger
	closer func()

	format string
	flat   bool
	offset int

	// pickLink runs the picker. Replaced in tests.
	pickLink func(textlinks.Document) (*textlinks.Span, error)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	return newApp(out, errOut).run(ctx, args)
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, logger: zerolog.Nop(), pickLink: tui.PickLink}
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd := a.command()

	argv := []string{cmd.Name}
	if len(args) > 1 {
		argv = append(argv, normalizeArgs(args[1:])...)
	}
	return cmd.Run(ctx, argv)
}

// normalizeArgs drops the command name gh injects when the binary runs as
// an extension.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	switch args[0] {
	case "textlinks", "gh-textlinks":
		return args[1:]
	}
	return args
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "gh-textlinks",
		Usage:     "Annotate text with clickable links",
		UsageText: "gh-textlinks [global options] command [command options] [document.yaml]",
		Description: `Finds link text inside a document and turns each occurrence into a
clickable span. Documents come from a YAML file or from the body of a GitHub
issue or pull request.`,
		Version:   version,
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("TEXTLINKS_LOG_LEVEL"),
				Value:       "warn",
				Destination: &a.flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "write JSON logs to this file instead of stderr",
				Sources:     cli.EnvVars("TEXTLINKS_LOG_FILE"),
				Destination: &a.flags.LogFile,
			},
			&cli.BoolFlag{
				Name:        "no-color",
				Aliases:     []string{"no-colour"},
				Usage:       "disable coloured terminal output",
				Destination: &a.flags.NoColor,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := textlinks.NewLogger(a.flags.LogLevel, a.flags.LogFile, a.errOut)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			a.logger = logger
			a.closer = closer
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if a.closer != nil {
				a.closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			a.renderCmd(),
			a.clickCmd(),
			a.viewCmd(),
			a.pickCmd(),
		},
	}
}

func (a *app) renderCmd() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Print the document with its links",
		UsageText: "gh-textlinks render [--format ansi|plain|json|markdown] [document.yaml]",
		Flags: append(a.src.flags(),
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format: ansi, plain, json or markdown",
				Value:       "ansi",
				Destination: &a.format,
			},
			&cli.BoolFlag{
				Name:        "flat",
				Usage:       "with --format json, emit only the span array",
				Destination: &a.flat,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			doc, err := a.loadDocument(ctx, c.Args().First(), textlinks.DefaultActions(a.out, a.logger))
			if err != nil {
				return err
			}
			return a.render(doc)
		},
	}
}

func (a *app) render(doc textlinks.Document) error {
	spans := doc.Spans()
	colour := a.colorEnabled()

	switch a.format {
	case "ansi", "plain":
		painter := textlinks.Painter{Color: colour && a.format == "ansi", Hyperlinks: colour && a.format == "ansi"}
		if doc.Title != "" {
			title := doc.Title
			if painter.Color {
				title = textlinks.Style{Bold: true}.Lipgloss().Render(title)
			}
			if _, err := fmt.Fprintf(a.out, "%s\n\n", title); err != nil {
				return fmt.Errorf("write title: %w", err)
			}
		}
		if _, err := fmt.Fprintln(a.out, painter.Paint(doc.Text, spans)); err != nil {
			return fmt.Errorf("write text: %w", err)
		}

	case "json":
		payload, err := textlinks.MarshalJSON(textlinks.BuildOutput(doc), a.flat)
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		display := textlinks.ColouriseJSONSpans(colour, payload)
		if _, err := a.out.Write(display); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if len(payload) == 0 || payload[len(payload)-1] != '\n' {
			if _, err := a.out.Write([]byte("\n")); err != nil {
				return fmt.Errorf("write newline: %w", err)
			}
		}

	case "markdown", "md":
		if _, err := fmt.Fprintln(a.out, textlinks.RenderMarkdown(doc, spans)); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}

	default:
		return fmt.Errorf("unknown format %q", a.format)
	}
	return nil
}

func (a *app) clickCmd() *cli.Command {
	return &cli.Command{
		Name:      "click",
		Usage:     "Activate the link at a text offset",
		UsageText: "gh-textlinks click --offset N [document.yaml]",
		Flags: append(a.src.flags(),
			&cli.IntFlag{
				Name:        "offset",
				Aliases:     []string{"o"},
				Usage:       "character offset into the text",
				Required:    true,
				Destination: &a.offset,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			// Echo links would print the payload a second time.
			actions := textlinks.DefaultActions(io.Discard, a.logger)
			doc, err := a.loadDocument(ctx, c.Args().First(), actions)
			if err != nil {
				return err
			}

			payload, ok, err := textlinks.Activate(doc.Links, doc.Spans(), a.offset)
			if !ok {
				return fmt.Errorf("%w at offset %d", ErrNoLink, a.offset)
			}
			a.logger.Info().Int("offset", a.offset).Str("payload", payload).Msg("link activated")
			if _, werr := fmt.Fprintln(a.out, payload); werr != nil {
				return fmt.Errorf("write payload: %w", werr)
			}
			if err != nil {
				return fmt.Errorf("activate %q: %w", payload, err)
			}
			return nil
		},
	}
}

func (a *app) viewCmd() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "Open the document in an interactive viewer",
		UsageText: "gh-textlinks view [document.yaml]",
		Flags:     a.src.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			var echoed bytes.Buffer
			actions := textlinks.DefaultActions(&echoed, a.logger)
			opts := tui.ViewOptions{
				Color:      !a.noColor(),
				Hyperlinks: !a.noColor(),
				Logger:     a.logger,
			}

			path := c.Args().First()
			var err error
			if path != "" {
				doc, lerr := a.loadDocument(ctx, path, actions)
				if lerr != nil {
					return lerr
				}
				_, err = tui.RunLinkView(doc, opts)
			} else {
				label, lerr := a.src.label(ctx)
				if lerr != nil {
					return lerr
				}
				err = tui.RunFlow(label, func() (textlinks.Document, error) {
					return a.loadDocument(ctx, "", actions)
				}, opts)
			}

			if _, werr := a.out.Write(echoed.Bytes()); werr != nil {
				return fmt.Errorf("write echoed payloads: %w", werr)
			}
			return err
		},
	}
}

func (a *app) pickCmd() *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Usage:     "Choose a link from a list and activate it",
		UsageText: "gh-textlinks pick [document.yaml]",
		Flags:     a.src.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			// The picked payload is printed below, so echo links stay quiet.
			doc, err := a.loadDocument(ctx, c.Args().First(), textlinks.DefaultActions(io.Discard, a.logger))
			if err != nil {
				return err
			}

			span, err := a.pickLink(doc)
			if errors.Is(err, tui.ErrPickCancelled) {
				return nil
			}
			if span != nil {
				a.logger.Info().Str("payload", span.Payload).Msg("link picked")
				if _, werr := fmt.Fprintln(a.out, span.Payload); werr != nil {
					return fmt.Errorf("write payload: %w", werr)
				}
			}
			if err != nil {
				return fmt.Errorf("pick link: %w", err)
			}
			return nil
		},
	}
}

func (a *app) noColor() bool {
	if a.flags.NoColor {
		return true
	}
	return strings.TrimSpace(os.Getenv("NO_COLOR")) != ""
}

func (a *app) colorEnabled() bool {
	return !a.noColor() && isTerminalWriter(a.out)
}

func isTerminalWriter(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
