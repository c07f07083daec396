package invocation

import (
	"errors"
	"fmt"
	"io"

	"github.com/tuannm99/novavolt/internal/alias/bx"
	"github.com/tuannm99/novavolt/pkg/wire"
)

func ReadFrame(rd io.Reader, limit int) ([]byte, error) { return DefaultCodec.ReadFrame(rd, limit) }
func WriteFrame(w io.Writer, frame []byte) error        { return DefaultCodec.WriteFrame(w, frame) }

// ReadFrame reads one length-prefixed frame and returns its body. A zero
// limit means the format's MaxFrameSize.
//
// A short header or body surfaces the io error unchanged; the frame length
// itself is checked before anything is allocated.
func (c *Codec) ReadFrame(rd io.Reader, limit int) ([]byte, error) {
	f := c.format()
	if limit <= 0 {
		limit = f.MaxFrameSize
	}
	var hdr [4]byte
	if _, err := io.ReadFull(rd, hdr[:]); err != nil {
		return nil, err
	}
	n := bx.I32(f.ByteOrder, hdr[:])
	if n < 0 {
		return nil, fmt.Errorf("%w: frame length %d", wire.ErrInvalidLength, n)
	}
	if int(n) > limit {
		return nil, fmt.Errorf("%w: %d > %d", wire.ErrFrameTooLarge, n, limit)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(rd, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

// WriteFrame writes an already sealed frame (length prefix included).
func (c *Codec) WriteFrame(w io.Writer, frame []byte) error {
	if len(frame) < 4 || int(bx.I32(c.format().ByteOrder, frame)) != len(frame)-4 {
		return fmt.Errorf("%w: unsealed frame", wire.ErrInvalidLength)
	}
	_, err := w.Write(frame)
	return err
}

// PeekID returns the invocation id leading a request or response body. ok is
// false when the body is too short to carry one.
func (c *Codec) PeekID(body []byte) (id int64, ok bool) {
	id, err := c.format().NewReader(body).ReadInt64()
	return id, err == nil
}
