// Package antivirus scans uploaded files with a clamd daemon.
package antivirus

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// clamd rejects streams above StreamMaxLength (25MB by default); chunks stay well below.
const chunkSize = 64 * 1024

var ErrUnavailable = errors.New("antivirus scanner unavailable")

// Result of a scan. Infected is also true when the scan itself failed.
type Result struct {
	Infected   bool
	ThreatName string
	Err        error
}

// Scanner is implemented by ClamAV. The upload use case treats a nil Scanner as "scanning disabled".
type Scanner interface {
	Scan(ctx context.Context, data []byte) Result
	Ping(ctx context.Context) error
}

type ClamAV struct {
	network string
	address string
	timeout time.Duration
}

// NewClamAV connects to clamd at a TCP "host:port" or a unix socket path.
func NewClamAV(address string, timeout time.Duration) *ClamAV {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	return &ClamAV{network: network, address: address, timeout: timeout}
}

func (c *ClamAV) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping sends zPING and expects PONG.
func (c *ClamAV) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if reply != "PONG" {
		return fmt.Errorf("%w: unexpected reply %q", ErrUnavailable, reply)
	}
	return nil
}

// Scan streams data with zINSTREAM. Failures are reported as infected.
func (c *ClamAV) Scan(ctx context.Context, data []byte) Result {
	conn, err := c.dial(ctx)
	if err != nil {
		return Result{Infected: true, Err: err}
	}
	defer conn.Close()

	if err := writeStream(conn, data); err != nil {
		return Result{Infected: true, Err: fmt.Errorf("send stream: %w", err)}
	}
	reply, err := readReply(conn)
	if err != nil {
		return Result{Infected: true, Err: fmt.Errorf("read reply: %w", err)}
	}
	return parseReply(reply)
}

func writeStream(w io.Writer, data []byte) error {
	if _, err := w.Write([]byte("zINSTREAM\x00")); err != nil {
		return err
	}
	var size [4]byte
	for len(data) > 0 {
		n := min(len(data), chunkSize)
		binary.BigEndian.PutUint32(size[:], uint32(n))
		if _, err := w.Write(size[:]); err != nil {
			return err
		}
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	binary.BigEndian.PutUint32(size[:], 0)
	_, err := w.Write(size[:])
	return err
}

// readReply reads one NUL-terminated clamd reply.
func readReply(r io.Reader) (string, error) {
	var buf bytes.Buffer
	one := make([]byte, 1)
	for buf.Len() < 4096 {
		n, err := r.Read(one)
		if n == 1 {
			if one[0] == 0 {
				break
			}
			buf.WriteByte(one[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

// parseReply handles "stream: OK", "stream: <name> FOUND" and "<msg> ERROR".
func parseReply(reply string) Result {
	switch {
	case strings.HasSuffix(reply, "FOUND"):
		threat := strings.TrimSuffix(reply, "FOUND")
		if i := strings.Index(threat, ":"); i >= 0 {
			threat = threat[i+1:]
		}
		return Result{Infected: true, ThreatName: strings.TrimSpace(threat)}
	case strings.HasSuffix(reply, "OK"):
		return Result{}
	default:
		return Result{Infected: true, Err: fmt.Errorf("clamd: %s", reply)}
	}
}
