package transport

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"

	"github.com/six78/gamelobby/pkg/protocol"
)

const maxFrameSize = 1 << 20

// StreamConnection sends one JSON envelope per line.
type StreamConnection struct {
	stream io.ReadWriteCloser
	reader *bufio.Reader
	remote string

	writeMutex sync.Mutex
	closeOnce  sync.Once
	closeErr   error
	closed     chan struct{}
}

func NewStreamConnection(stream io.ReadWriteCloser) *StreamConnection {
	remote := "stream"
	if conn, ok := stream.(net.Conn); ok && conn.RemoteAddr() != nil {
		remote = conn.RemoteAddr().String()
	}
	return &StreamConnection{
		stream: stream,
		reader: bufio.NewReaderSize(stream, 64*1024),
		remote: remote,
		closed: make(chan struct{}),
	}
}

func (c *StreamConnection) Send(frame protocol.Frame) error {
	payload, err := protocol.EncodeFrame(frame)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')

	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	if c.isClosed() {
		return ErrClosed
	}

	_, err = c.stream.Write(payload)
	if err != nil {
		return errors.Wrap(err, "failed to write frame")
	}
	return nil
}

func (c *StreamConnection) Receive() (protocol.Frame, error) {
	for {
		line, err := c.readLine()
		if err != nil {
			if c.isClosed() || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				return protocol.Frame{}, ErrClosed
			}
			return protocol.Frame{}, errors.Wrap(err, "failed to read frame")
		}
		if len(line) == 0 {
			continue
		}
		return decodeFrame(line)
	}
}

func (c *StreamConnection) readLine() ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := c.reader.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > maxFrameSize {
			return nil, errors.New("frame too large")
		}
		if !isPrefix {
			return line, nil
		}
	}
}

func (c *StreamConnection) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.stream.Close()
	})
	return c.closeErr
}

func (c *StreamConnection) RemoteAddr() string {
	return c.remote
}

func (c *StreamConnection) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
