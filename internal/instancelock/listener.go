package instancelock

import (
	"errors"
	"net"
	"strings"
	"time"

	"github.com/codefionn/einzel/internal/consts"
	"github.com/codefionn/einzel/internal/logger"
	"github.com/codefionn/einzel/internal/wire"
)

// serveLoop accepts activation connections until the lock socket closes.
//
// Errors are classified explicitly: a closed socket is the designated stop
// signal, per-connection failures are recovered inside serve, and any
// other accept error is fatal. A fatal exit means no listener is answering
// probes anymore while the port file may still advertise this process, so
// it is logged prominently.
func (l *Lock) serveLoop(ln net.Listener, done chan struct{}) {
	defer close(done)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Debug("lock socket closed, listener stopping")
				return
			}
			logger.Error("listener failed, single-instance guarantee lost: %v", err)
			return
		}
		l.serve(conn)
	}
}

// serve handles one activation connection: publish the locked path set,
// read one command, validate the token, dispatch, acknowledge. Rejected
// or malformed commands get no reply at all; the closed connection is the
// rejection.
func (l *Lock) serve(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(consts.ServeTimeout)); err != nil {
		logger.Debug("serve deadline: %v", err)
		return
	}

	l.mu.Lock()
	paths := append([]string(nil), l.lockedPaths...)
	l.mu.Unlock()

	if err := wire.WritePathList(conn, paths); err != nil {
		logger.Debug("writing path list: %v", err)
		return
	}

	command, err := wire.ReadString(conn)
	if err != nil {
		logger.Debug("reading command: %v", err)
		return
	}

	if len(command) > consts.MaxCommandLength || !strings.HasPrefix(command, activateCommand) {
		logger.Debug("ignoring malformed command (%d bytes)", len(command))
		return
	}

	fields := strings.Split(command[len(activateCommand):], "\x00")
	if !l.token.Equal(fields[0]) {
		logger.Warn("rejected activation request with invalid token")
		l.opts.Notifier.Warn(
			"Unauthorized activation request",
			"Another process tried to activate this instance with an invalid token. The request was ignored.",
		)
		return
	}

	l.mu.Lock()
	fn := l.activateFn
	l.mu.Unlock()

	if fn != nil {
		fn(fields[1:])
	}

	if err := wire.WriteString(conn, "ok"); err != nil {
		logger.Debug("writing acknowledgement: %v", err)
	}
}
