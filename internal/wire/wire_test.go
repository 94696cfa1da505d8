package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/codefionn/einzel/internal/consts"
)

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, "activate tok\x00/home/u\x00arg"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}

	got, err := ReadString(&buf)
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	if got != "activate tok\x00/home/u\x00arg" {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func TestEmptyString(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, ""); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	got, err := ReadString(&buf)
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteString(&buf, strings.Repeat("x", consts.MaxFrameLength+1))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("expected ErrFrameTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("oversized frame partially written: %d bytes", buf.Len())
	}
}

func TestTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, "full payload"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-3])
	if _, err := ReadString(truncated); err == nil {
		t.Error("expected error reading truncated frame")
	}
}

func TestReadStringEOF(t *testing.T) {
	if _, err := ReadString(bytes.NewReader(nil)); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF on empty reader, got %v", err)
	}
}

func TestPathListRoundTrip(t *testing.T) {
	paths := []string{"/home/u/.config/app", "/opt/app/system"}

	var buf bytes.Buffer
	if err := WritePathList(&buf, paths); err != nil {
		t.Fatalf("WritePathList failed: %v", err)
	}

	got, err := ReadPathList(&buf)
	if err != nil {
		t.Fatalf("ReadPathList failed: %v", err)
	}
	if len(got) != len(paths) {
		t.Fatalf("expected %d paths, got %d", len(paths), len(got))
	}
	for i := range paths {
		if got[i] != paths[i] {
			t.Errorf("path %d mismatch: %q != %q", i, got[i], paths[i])
		}
	}
}

func TestEmptyPathList(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePathList(&buf, nil); err != nil {
		t.Fatalf("WritePathList failed: %v", err)
	}
	got, err := ReadPathList(&buf)
	if err != nil {
		t.Fatalf("ReadPathList failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestPathListRejectsBogusCount(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, "not-a-number"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if _, err := ReadPathList(&buf); err == nil {
		t.Error("expected error for non-numeric count frame")
	}

	buf.Reset()
	if err := WriteString(&buf, "99999"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if _, err := ReadPathList(&buf); err == nil {
		t.Error("expected error for count above MaxPathCount")
	}
}

func TestPathListTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, "2"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if err := WriteString(&buf, "/only/one"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if _, err := ReadPathList(&buf); err == nil {
		t.Error("expected error when list is shorter than its count frame")
	}
}
