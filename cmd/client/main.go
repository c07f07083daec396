package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tuannm99/novavolt/internal"
	"github.com/tuannm99/novavolt/internal/logging"
	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/voltclient"
)

const (
	prompt     = "novavolt> "
	contPrompt = "...> "
)

const helpText = `meta commands:
  \q | quit | exit       quit
  \help                  show help

invocations:
  Proc(arg, ...);        end with ';', multiline is supported
  literals: NULL 'text' 42 1.5 12.75m x'cafe' ts'2011-01-02T03:04:05Z' [1, 2, 3]
history:
  up/down or Ctrl+R; only statements that parse are kept, in canonical form`

// stmtBuffer collects input lines until one statement is terminated.
type stmtBuffer struct {
	buf strings.Builder
}

// feed adds a line and returns the statement once it is terminated. Anything
// after the terminating ';' is dropped.
func (s *stmtBuffer) feed(line string) (string, bool) {
	if s.buf.Len() > 0 {
		s.buf.WriteByte(' ')
	}
	s.buf.WriteString(line)
	end := statementEnd(s.buf.String())
	if end < 0 {
		return "", false
	}
	stmt := strings.TrimSpace(s.buf.String()[:end])
	s.buf.Reset()
	return stmt, true
}

func (s *stmtBuffer) pending() bool { return s.buf.Len() > 0 }
func (s *stmtBuffer) reset()        { s.buf.Reset() }

// metaCommand handles a line typed at the primary prompt. handled is false
// for anything that is not a meta command.
func metaCommand(line string, out io.Writer) (handled, quit bool) {
	switch line {
	case "\\q", "quit", "exit":
		return true, true
	case "\\help":
		fmt.Fprintln(out, helpText)
		return true, false
	}
	if strings.HasPrefix(line, "\\") {
		fmt.Fprintf(out, "unknown command: %s\n", line)
		return true, false
	}
	return false, false
}

// execute parses and invokes one statement, printing the result to out.
func execute(ctx context.Context, cli *voltclient.Client, stmt string, out io.Writer) error {
	call, err := ParseCall(stmt)
	if err != nil {
		return err
	}
	return invoke(ctx, cli, call, out)
}

func invoke(ctx context.Context, cli *voltclient.Client, call *Call, out io.Writer) error {
	proc, err := call.Procedure()
	if err != nil {
		return err
	}
	resp, err := cli.InvokeContext(ctx, proc)
	if err != nil {
		return err
	}
	return printResponse(out, resp)
}

func printResponse(out io.Writer, resp *invocation.Response) error {
	if err := resp.Err(); err != nil {
		return err
	}
	if resp.AppStatusString != "" {
		fmt.Fprintf(out, "app status %d: %s\n", resp.AppStatus, resp.AppStatusString)
	}
	if len(resp.Results) == 0 {
		fmt.Fprintf(out, "OK (%d ms)\n", resp.ClusterRoundTrip)
		return nil
	}
	for i, t := range resp.Results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := t.Render(out); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	var (
		cfgPath  = flag.String("config", "", "config file (yaml, toml or json)")
		addr     = flag.String("addr", "", "server address (overrides config)")
		timeout  = flag.Duration("timeout", 0, "dial timeout (overrides config)")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
		histMax  = flag.Int("history-max", 2000, "max history entries kept")
		oneShot  = flag.String("c", "", "invoke one procedure and exit, e.g. \"Select('French');\"")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Client.Addr = *addr
	}
	if *timeout > 0 {
		cfg.Client.DialTimeout = *timeout
	}
	// the REPL owns the terminal, so logs stay quiet unless asked for
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	logger := logging.Init(cfg.AppName+"-client", cfg.Log.Level, cfg.Log.Console)

	ctx := context.Background()
	cli, err := voltclient.DialContext(ctx, voltclient.ConfigFrom(cfg, &logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = cli.Close() }()

	// one-shot mode
	if strings.TrimSpace(*oneShot) != "" {
		if err := execute(ctx, cli, *oneShot, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 prompt,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		HistoryFile:            *histPath,
		HistoryLimit:           *histMax,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("connected to %s\n", cfg.Client.Addr)
	fmt.Println("type \\help for help")
	repl(ctx, cli, rl, os.Stdout)
}

func repl(ctx context.Context, cli *voltclient.Client, rl *readline.Instance, out io.Writer) {
	var sb stmtBuffer
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C drops a pending statement
			if sb.pending() {
				sb.reset()
				rl.SetPrompt(prompt)
				continue
			}
			fmt.Fprintln(out, "^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Fprintln(out)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !sb.pending() {
			handled, quit := metaCommand(line, out)
			if quit {
				return
			}
			if handled {
				continue
			}
		}

		stmt, ok := sb.feed(line)
		if !ok {
			rl.SetPrompt(contPrompt)
			continue
		}
		rl.SetPrompt(prompt)

		call, err := ParseCall(stmt)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		_ = rl.SaveHistory(call.String())

		if err := invoke(ctx, cli, call, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			if errors.Is(err, voltclient.ErrConnectionBroken) {
				return
			}
		}
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novavolt_history"
	}
	return filepath.Join(home, ".novavolt_history")
}
