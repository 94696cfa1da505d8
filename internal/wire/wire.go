// Package wire implements the framing used on activation connections.
//
// Every message is a single UTF-8 string prefixed with its byte length as
// a big-endian uint16. The path list sent by a listener on connect is a
// count frame (decimal string) followed by exactly that many path frames,
// so the end of the list is deterministic and does not depend on read
// timeouts.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/codefionn/einzel/internal/consts"
)

// ErrFrameTooLarge indicates a payload exceeding the uint16 length prefix.
var ErrFrameTooLarge = errors.New("frame exceeds maximum length")

// MaxPathCount caps the number of paths accepted in one path list. A
// well-behaved instance locks a handful of directories; anything past
// this is a malformed or hostile peer.
const MaxPathCount = 1024

// WriteString writes s as one length-prefixed frame.
func WriteString(w io.Writer, s string) error {
	if len(s) > consts.MaxFrameLength {
		return ErrFrameTooLarge
	}

	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(s)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("failed to write frame prefix: %w", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}
	return nil
}

// ReadString reads one length-prefixed frame.
func ReadString(r io.Reader) (string, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return "", err
	}

	n := binary.BigEndian.Uint16(prefix[:])
	if n == 0 {
		return "", nil
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", fmt.Errorf("failed to read frame payload: %w", err)
	}
	return string(payload), nil
}

// WritePathList writes the count frame followed by one frame per path.
func WritePathList(w io.Writer, paths []string) error {
	if err := WriteString(w, strconv.Itoa(len(paths))); err != nil {
		return err
	}
	for _, p := range paths {
		if err := WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

// ReadPathList reads a count frame and that many path frames.
func ReadPathList(r io.Reader) ([]string, error) {
	countStr, err := ReadString(r)
	if err != nil {
		return nil, err
	}

	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("invalid path count %q", countStr)
	}
	if count > MaxPathCount {
		return nil, fmt.Errorf("path count %d exceeds limit %d", count, MaxPathCount)
	}

	paths := make([]string, 0, count)
	for i := 0; i < count; i++ {
		p, err := ReadString(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read path %d of %d: %w", i+1, count, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
