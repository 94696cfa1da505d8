package instancelock

import (
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/codefionn/einzel/internal/consts"
	"github.com/codefionn/einzel/internal/logger"
	"github.com/codefionn/einzel/internal/wire"
)

// tryActivate probes one candidate port for a running instance claiming
// path and, on a claim, asks it to activate with token and args.
//
// Any I/O trouble before the claim is established means "no instance on
// this port" and the sweep moves on. Once a peer has claimed the path, a
// failed handshake is CannotActivate and terminal for the whole sweep.
func (l *Lock) tryActivate(port int, path, token string, args []string) ActivateStatus {
	addr := loopbackAddr(port)

	// A successful bind proves nothing is listening there.
	if probe, err := net.Listen("tcp", addr); err == nil {
		probe.Close()
		return NoInstance
	}

	conn, err := net.DialTimeout("tcp", addr, consts.ProbeDialTimeout)
	if err != nil {
		logger.Debug("dial %s: %v", addr, err)
		return NoInstance
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(consts.ProbeReadTimeout)); err != nil {
		logger.Debug("deadline on %s: %v", addr, err)
		return NoInstance
	}

	paths, err := wire.ReadPathList(conn)
	if err != nil {
		logger.Debug("path list from %s: %v", addr, err)
		return NoInstance
	}

	if !containsPath(paths, path) {
		return NoInstance
	}

	// The peer owns the path; from here on everything is a handshake
	// failure, not a missing instance.
	cwd, err := filepath.Abs(".")
	if err != nil {
		cwd = "."
	}
	fields := append([]string{token, cwd}, args...)
	command := activateCommand + strings.Join(fields, "\x00")

	if err := conn.SetDeadline(time.Now().Add(consts.ProbeReadTimeout)); err != nil {
		logger.Debug("deadline on %s: %v", addr, err)
		return CannotActivate
	}
	if err := wire.WriteString(conn, command); err != nil {
		logger.Info("peer on port %d claims %q but the request failed: %v", port, path, err)
		return CannotActivate
	}

	reply, err := wire.ReadString(conn)
	if err != nil {
		logger.Info("peer on port %d claims %q but sent no acknowledgement: %v", port, path, err)
		return CannotActivate
	}
	if reply != "ok" {
		logger.Info("peer on port %d claims %q but replied %q", port, path, reply)
		return CannotActivate
	}

	return Activated
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
