package daemon

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/1broseidon/quickterm/internal/config"
	"github.com/1broseidon/quickterm/internal/control"
	"github.com/1broseidon/quickterm/internal/registry"
	"github.com/1broseidon/quickterm/internal/runtimepath"
	"github.com/1broseidon/quickterm/internal/session"
	"github.com/1broseidon/quickterm/internal/toggler"
)

// Daemon owns the manager session, the per-shell ratio registry and the
// control socket. Two execution contexts run concurrently: the control
// server's accept/read loop and the manager event watcher. Toggles are
// serialized by a single mutex, so each toggle's manager round trips and
// registry mutation form one critical section.
type Daemon struct {
	cfg      *config.Config
	session  *session.Client
	registry *registry.Registry
	toggler  *toggler.Toggler

	mu sync.Mutex
}

// New wires the daemon's components from the configuration.
func New(cfg *config.Config) *Daemon {
	sess := session.New()
	reg := registry.New(cfg.Ratio)
	return &Daemon{
		cfg:      cfg,
		session:  sess,
		registry: reg,
		toggler:  toggler.New(sess, reg, cfg),
	}
}

// Run starts the control server and blocks on the manager event stream. It
// returns only if the event subscription breaks; a manager-reported shutdown
// exits the process immediately instead, leaving socket cleanup to the OS.
func (d *Daemon) Run() error {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return err
	}

	srv := control.NewServer(socketPath, d.cfg.ShellNames(), d.toggle)
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	log.Printf("quickterm daemon started (shells: %s)", strings.Join(d.cfg.ShellNames(), ", "))

	return d.session.WatchShutdown(func() {
		log.Println("window manager is shutting down, exiting")
		os.Exit(0)
	})
}

func (d *Daemon) toggle(shell string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.toggler.Toggle(shell)
}
