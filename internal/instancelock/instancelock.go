// Package instancelock implements single-instance coordination over a
// loopback TCP port. The first process to bind a port in the candidate
// range becomes the instance holder and serves activation requests; later
// processes find it by probing the range, hand over their startup
// arguments, and exit instead of starting a second instance.
package instancelock

import (
	"errors"
	"net"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/codefionn/einzel/internal/notify"
	"github.com/codefionn/einzel/internal/securemem"
)

const (
	// SocketNumberStart is the first candidate port.
	SocketNumberStart = 6942

	// SocketNumberSpan is the number of candidate ports.
	SocketNumberSpan = 50

	// activateCommand prefixes every activation request on the wire.
	activateCommand = "activate "
)

// DefaultForbiddenPorts are never bound or probed. Some monitoring
// software flags processes that touch these ports, so they are excluded
// regardless of availability.
var DefaultForbiddenPorts = []int{6953, 6969, 6970}

// ErrPortExhausted is returned when no port in the candidate range could
// be bound; the caller decides whether to proceed unlocked or abort.
var ErrPortExhausted = errors.New("no free port in the candidate range")

// ActivateStatus is the outcome of a Lock call.
type ActivateStatus int

const (
	// Activated means a running instance claimed the path and accepted
	// the forwarded arguments; the caller should exit.
	Activated ActivateStatus = iota

	// NoInstance means no running instance claims the path; the caller
	// is now the instance holder.
	NoInstance

	// CannotActivate means an instance claimed the path but the
	// activation handshake failed; the caller should not start anyway.
	CannotActivate
)

// String returns a readable name for the status.
func (s ActivateStatus) String() string {
	switch s {
	case Activated:
		return "activated"
	case NoInstance:
		return "no instance"
	case CannotActivate:
		return "cannot activate"
	default:
		return "unknown"
	}
}

// Options configures a Lock. The zero value uses the documented defaults;
// tests override the range to stay off the production ports.
type Options struct {
	// BasePort is the first candidate port. Defaults to SocketNumberStart.
	BasePort int

	// PortSpan is the number of candidate ports. Defaults to SocketNumberSpan.
	PortSpan int

	// ForbiddenPorts are skipped when binding and probing. Defaults to
	// DefaultForbiddenPorts.
	ForbiddenPorts []int

	// Notifier receives the security warning raised when an activation
	// request carries a bad token. Defaults to notify.LogNotifier.
	Notifier notify.Notifier
}

func (o Options) withDefaults() Options {
	if o.BasePort == 0 {
		o.BasePort = SocketNumberStart
	}
	if o.PortSpan == 0 {
		o.PortSpan = SocketNumberSpan
	}
	if o.ForbiddenPorts == nil {
		o.ForbiddenPorts = DefaultForbiddenPorts
	}
	if o.Notifier == nil {
		o.Notifier = notify.LogNotifier{}
	}
	return o
}

// Lock owns this process's side of the coordination: the lock socket, the
// set of paths the instance claims, and the secret token authenticating
// activation requests. All shared state is guarded by a single mutex; the
// listener goroutine and callers never touch it unguarded.
type Lock struct {
	mu          sync.Mutex
	opts        Options
	listener    net.Listener // nil until acquired, reset to nil on Dispose
	port        int          // -1 while no socket is held
	lockedPaths []string     // append-only for the process lifetime
	activateFn  func(args []string)
	loopDone    chan struct{}

	// token never changes after New; it leaves the process only through
	// the token marker file, and comes back as the first field of a
	// sibling's activation request.
	token *securemem.String
}

// New creates a Lock with a fresh random token.
func New(opts Options) *Lock {
	return &Lock{
		opts:  opts.withDefaults(),
		port:  -1,
		token: securemem.NewString(uuid.NewString()),
	}
}

// SetActivateHandler registers the callback receiving forwarded activation
// arguments: the requesting process's working directory followed by its
// command-line arguments. The token is stripped before forwarding.
func (l *Lock) SetActivateHandler(fn func(args []string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activateFn = fn
}

// Port returns the lock socket's port, or -1 if none is held.
func (l *Lock) Port() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port
}

// Paths returns a snapshot of the locked path set.
func (l *Lock) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lockedPaths...)
}

// isForbidden reports whether port is on the deny list.
func (l *Lock) isForbidden(port int) bool {
	for _, p := range l.opts.ForbiddenPorts {
		if port == p {
			return true
		}
	}
	return false
}

// IsPortForbidden reports whether port is on the default deny list.
func IsPortForbidden(port int) bool {
	for _, p := range DefaultForbiddenPorts {
		if port == p {
			return true
		}
	}
	return false
}

func loopbackAddr(port int) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}
