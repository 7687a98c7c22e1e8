package noise

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/flynn/noise"

	"github.com/dep2p/go-meshchat/pkg/types"
)

const (
	// maxRecordSize 单条记录密文上限（2 字节长度前缀）
	maxRecordSize = 65535

	// MaxPlaintextSize 单条记录明文上限（扣除 16 字节 Poly1305 标签）
	MaxPlaintextSize = maxRecordSize - 16
)

// Conn 握手完成后的加密连接
type Conn struct {
	net.Conn

	send *noise.CipherState
	recv *noise.CipherState

	local  types.PeerID
	remote types.PeerID

	readMu  sync.Mutex
	pending []byte
	rbuf    []byte

	writeMu sync.Mutex
	wbuf    []byte
}

var _ net.Conn = (*Conn)(nil)

func newConn(raw net.Conn, send, recv *noise.CipherState, local, remote types.PeerID) *Conn {
	return &Conn{
		Conn:   raw,
		send:   send,
		recv:   recv,
		local:  local,
		remote: remote,
	}
}

// LocalPeer 本地 PeerID
func (c *Conn) LocalPeer() types.PeerID {
	return c.local
}

// RemotePeer 经过认证的对端 PeerID
func (c *Conn) RemotePeer() types.PeerID {
	return c.remote
}

// Read 解密读取，一条记录没读完时剩余部分留给下次
func (c *Conn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for len(c.pending) == 0 {
		record, err := readRecord(c.Conn, c.rbuf)
		if err != nil {
			return 0, err
		}
		c.rbuf = record[:0]

		plain, err := c.recv.Decrypt(nil, nil, record)
		if err != nil {
			return 0, fmt.Errorf("noise: decrypt: %w", err)
		}
		c.pending = plain
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write 加密写入，超过 MaxPlaintextSize 的数据拆成多条记录
func (c *Conn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	written := 0
	for written < len(p) {
		end := written + MaxPlaintextSize
		if end > len(p) {
			end = len(p)
		}

		var err error
		c.wbuf, err = c.send.Encrypt(c.wbuf[:0], nil, p[written:end])
		if err != nil {
			return written, fmt.Errorf("noise: encrypt: %w", err)
		}
		if err := writeRecord(c.Conn, c.wbuf); err != nil {
			return written, err
		}
		written = end
	}
	return written, nil
}

// writeRecord 写一条记录：2 字节大端长度 + 数据，合并为一次写
func writeRecord(w io.Writer, data []byte) error {
	if len(data) > maxRecordSize {
		return fmt.Errorf("noise: record of %d bytes exceeds %d", len(data), maxRecordSize)
	}
	buf := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(buf, uint16(len(data)))
	copy(buf[2:], data)
	_, err := w.Write(buf)
	return err
}

// readRecord 读一条记录，尽量复用 buf
func readRecord(r io.Reader, buf []byte) ([]byte, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	size := int(binary.BigEndian.Uint16(hdr[:]))
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
