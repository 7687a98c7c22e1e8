package host

import (
	"fmt"
	"io"

	"github.com/multiformats/go-varint"
)

// writeFrame 写一帧：uvarint 长度 + 数据
func writeFrame(w io.Writer, data []byte) error {
	buf := make([]byte, 0, varint.UvarintSize(uint64(len(data)))+len(data))
	buf = append(buf, varint.ToUvarint(uint64(len(data)))...)
	buf = append(buf, data...)
	_, err := w.Write(buf)
	return err
}

// byteReader 逐字节读取，不预读帧之后的数据
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

// readFrame 读一帧，长度超过 max 时报错
//
// 只消费本帧的字节，同一个 r 上可以连续读取多帧。
func readFrame(r io.Reader, max int) ([]byte, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = &byteReader{r: r}
	}
	size, err := varint.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	if size > uint64(max) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, size, max)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
