package instancelock

import (
	"net"

	"github.com/codefionn/einzel/internal/logger"
	"github.com/codefionn/einzel/internal/markerfile"
)

// Lock acquires instance ownership for path or forwards to whoever owns it.
//
// If this process does not yet hold a lock socket, one is bound on the
// first free candidate port and the listener service is started. Every
// other candidate port is then probed for a running instance claiming
// path; on a claim, the activation handshake forwards the current working
// directory and args and the call returns Activated (or CannotActivate if
// the handshake failed, which ends the sweep). With no claim anywhere the
// process keeps the instance role: the held port is persisted to a marker
// file in path when markPort is set (also on re-entrant calls, which reuse
// the socket bound earlier), the token file at tokenPath is written
// otherwise, and path joins the locked path set.
//
// The only error is ErrPortExhausted, reported when no candidate port
// could be bound at all.
func (l *Lock) Lock(path, tokenPath string, markPort bool, args ...string) (ActivateStatus, error) {
	logger.Debug("lock: path=%q tokenPath=%q markPort=%v", path, tokenPath, markPort)

	l.acquireSocket()

	l.mu.Lock()
	held := l.listener != nil
	ownPort := l.port
	l.mu.Unlock()

	if !held {
		return NoInstance, ErrPortExhausted
	}

	if markPort {
		marker := markerfile.NewPort(path)
		if err := marker.Write(ownPort); err != nil {
			logger.Warn("failed to persist port marker: %v", err)
			marker.Remove()
		}
	}

	tokenFile := markerfile.NewToken(tokenPath)
	peerToken := tokenFile.Load()

	for port := l.opts.BasePort; port < l.opts.BasePort+l.opts.PortSpan; port++ {
		if l.isForbidden(port) || port == ownPort {
			continue
		}
		status := l.tryActivate(port, path, peerToken, args)
		if status != NoInstance {
			logger.Info("lock %q: %s via port %d", path, status, port)
			return status, nil
		}
	}

	if !markPort {
		if err := tokenFile.Store(l.token.String()); err != nil {
			logger.Warn("failed to persist token: %v", err)
			tokenFile.Remove()
		}
	}

	l.mu.Lock()
	l.lockedPaths = append(l.lockedPaths, path)
	l.mu.Unlock()

	logger.Info("lock %q: no running instance, serving on port %d", path, ownPort)
	return NoInstance, nil
}

// acquireSocket binds the lock socket on the first free candidate port and
// starts the listener service. It returns the freshly bound port, or -1
// when the socket already existed (re-entrant call) or nothing could be
// bound; callers check the socket itself to tell those apart.
func (l *Lock) acquireSocket() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listener != nil {
		return -1
	}

	for port := l.opts.BasePort; port < l.opts.BasePort+l.opts.PortSpan; port++ {
		if l.isForbidden(port) {
			continue
		}

		ln, err := net.Listen("tcp", loopbackAddr(port))
		if err != nil {
			logger.Debug("port %d unavailable: %v", port, err)
			continue
		}

		l.listener = ln
		l.port = port
		l.loopDone = make(chan struct{})
		go l.serveLoop(ln, l.loopDone)

		logger.Info("instance lock bound to %s", ln.Addr())
		return port
	}

	return -1
}

// Dispose closes the lock socket, which terminates the listener service.
// It is idempotent; only the first call closes anything.
func (l *Lock) Dispose() {
	l.mu.Lock()
	ln := l.listener
	l.listener = nil
	l.port = -1
	l.mu.Unlock()

	if ln == nil {
		return
	}
	if err := ln.Close(); err != nil {
		logger.Debug("closing lock socket: %v", err)
	}
	logger.Debug("instance lock disposed")
}
