package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/1broseidon/quickterm/internal/config"
	"github.com/1broseidon/quickterm/internal/control"
	"github.com/1broseidon/quickterm/internal/daemon"
	"github.com/1broseidon/quickterm/internal/history"
	"github.com/1broseidon/quickterm/internal/picker"
	"github.com/1broseidon/quickterm/internal/registry"
	"github.com/1broseidon/quickterm/internal/runtimepath"
	"github.com/1broseidon/quickterm/internal/session"
	"github.com/1broseidon/quickterm/internal/toggler"
)

func main() {
	daemonMode := flag.Bool("daemon", false, "Run the quickterm daemon (foreground)")
	inPlace := flag.Bool("in-place", false, "Mark, place and exec the shell inside the current terminal window")
	ratio := flag.Float64("ratio", 0, "Height ratio override for --in-place")
	flag.Usage = func() { printUsage(os.Stderr) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		// A broken config file should not make the toggle keybinding dead;
		// fall back to the defaults and say so.
		log.Printf("using default configuration: %v", err)
		cfg = config.DefaultConfig()
	}

	switch {
	case *daemonMode:
		if flag.NArg() != 0 {
			fmt.Fprintln(os.Stderr, "--daemon takes no arguments")
			printUsage(os.Stderr)
			os.Exit(2)
		}
		d := daemon.New(cfg)
		if err := d.Run(); err != nil {
			log.Fatal(err)
		}

	case *inPlace:
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "--in-place requires exactly one shell name")
			printUsage(os.Stderr)
			os.Exit(2)
		}
		os.Exit(runInPlace(cfg, flag.Arg(0), *ratio))

	case flag.NArg() == 1:
		os.Exit(runToggle(cfg, flag.Arg(0)))

	case flag.NArg() == 0:
		os.Exit(runPicker(cfg))

	default:
		printUsage(os.Stderr)
		os.Exit(2)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quickterm --daemon                        Run the daemon (foreground)")
	fmt.Fprintln(w, "  quickterm <shell>                         Toggle a shell's terminal")
	fmt.Fprintln(w, "  quickterm                                 Pick a shell with the menu program")
	fmt.Fprintln(w, "  quickterm --in-place --ratio R <shell>    Internal: run inside a fresh terminal")
}

// runToggle sends one toggle request to the daemon's control socket.
func runToggle(cfg *config.Config, shell string) int {
	if !cfg.HasShell(shell) {
		fmt.Fprintf(os.Stderr, "unknown shell: %s\n", shell)
		return 1
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := control.Send(socketPath, shell); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runPicker lets the user choose a shell via the external menu program, with
// candidates ordered most-recently-used first.
func runPicker(cfg *config.Config) int {
	histPath := cfg.History
	if histPath == "" {
		p, err := runtimepath.HistoryPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		histPath = p
	}
	candidates := history.Load(histPath, cfg.ShellNames())

	menu := cfg.Menu
	if menu == "" {
		m, err := picker.Detect()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		menu = m
	}

	choice, err := picker.Pick(menu, candidates)
	if errors.Is(err, picker.ErrCancelled) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !cfg.HasShell(choice) {
		fmt.Fprintf(os.Stderr, "unknown shell: %s\n", choice)
		return 1
	}

	if err := history.Save(histPath, history.Promote(candidates, choice)); err != nil {
		// History is a convenience; the toggle still goes through.
		log.Printf("failed to save history: %v", err)
	}

	return runToggle(cfg, choice)
}

// runInPlace positions the window this process runs in, then execs into the
// shell. It only returns on failure.
func runInPlace(cfg *config.Config, shell string, ratio float64) int {
	if !cfg.HasShell(shell) {
		fmt.Fprintf(os.Stderr, "unknown shell: %s\n", shell)
		return 1
	}

	sess := session.New()
	reg := registry.New(cfg.Ratio)
	tog := toggler.New(sess, reg, cfg)

	if err := tog.LaunchInPlace(shell, ratio); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
