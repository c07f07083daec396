// Package invocation frames stored-procedure calls and their responses.
//
// Request frame:
//
//	[int32 length][int64 invocation id][int32 len][procedure name][parameter set]
//
// Response body (the frame after its length prefix):
//
//	[int64 invocation id][int8 status]
//	  failure: [int32 len][status string]
//	  success: [int8 app status][int32 len][app status string]
//	           [int32 cluster round trip][int16 table count][tables...]
package invocation

import (
	"fmt"

	"github.com/tuannm99/novavolt/pkg/param"
	"github.com/tuannm99/novavolt/pkg/table"
	"github.com/tuannm99/novavolt/pkg/wire"
)

// Codec encodes and decodes invocation frames under one wire.Format.
type Codec struct {
	Format *wire.Format
}

var DefaultCodec = &Codec{Format: &wire.DefaultFormat}

func (c *Codec) format() *wire.Format {
	if c == nil || c.Format == nil {
		return &wire.DefaultFormat
	}
	return c.Format
}

func EncodeRequest(id int64, p *Procedure) ([]byte, error) { return DefaultCodec.EncodeRequest(id, p) }
func DecodeRequest(body []byte) (*Request, error)          { return DefaultCodec.DecodeRequest(body) }
func DecodeResponse(body []byte) (*Response, error)        { return DefaultCodec.DecodeResponse(body) }
func EncodeResponse(r *Response) ([]byte, error)           { return DefaultCodec.EncodeResponse(r) }

// EncodeRequest builds a complete request frame, length prefix included.
// The procedure's ParameterSet must be complete; it is left untouched.
func (c *Codec) EncodeRequest(id int64, p *Procedure) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil procedure", wire.ErrInvalidProcedure)
	}
	f := c.format()
	w := f.NewWriter(64)
	lenAt := w.ReserveInt32()
	w.WriteInt64(id)
	if err := w.WriteString(p.name); err != nil {
		return nil, err
	}
	if err := p.set.AppendTo(w); err != nil {
		return nil, fmt.Errorf("procedure %s: %w", p.name, err)
	}
	return sealFrame(f, w, lenAt)
}

// DecodeRequest parses a request body (the frame after its length prefix).
func (c *Codec) DecodeRequest(body []byte) (*Request, error) {
	r := c.format().NewReader(body)
	id, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	name, null, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	if null || name == "" {
		return nil, fmt.Errorf("%w: empty procedure name", wire.ErrInvalidProcedure)
	}
	values, err := param.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("procedure %s: %w", name, err)
	}
	if err := r.ExpectEnd(); err != nil {
		return nil, err
	}
	return &Request{InvocationID: id, Procedure: name, Params: values}, nil
}

// DecodeResponse parses a response body. Result tables reference body; the
// caller must not reuse it.
func (c *Codec) DecodeResponse(body []byte) (*Response, error) {
	r := c.format().NewReader(body)
	id, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	b, err := r.ReadInt8()
	if err != nil {
		return nil, err
	}
	status, err := ParseStatus(b)
	if err != nil {
		return nil, err
	}
	resp := &Response{InvocationID: id, Status: status}

	if status != StatusSuccess {
		if resp.StatusString, _, err = r.ReadString(); err != nil {
			return nil, err
		}
		if err := r.ExpectEnd(); err != nil {
			return nil, err
		}
		return resp, nil
	}

	if resp.AppStatus, err = r.ReadInt8(); err != nil {
		return nil, err
	}
	if resp.AppStatusString, _, err = r.ReadString(); err != nil {
		return nil, err
	}
	if resp.ClusterRoundTrip, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	n, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		resp.Results = make([]*table.Table, 0, n)
	}
	for i := 0; i < n; i++ {
		t, err := table.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		resp.Results = append(resp.Results, t)
	}
	if err := r.ExpectEnd(); err != nil {
		return nil, err
	}
	return resp, nil
}

// EncodeResponse builds a complete response frame, length prefix included.
// Results are dropped for failure statuses.
func (c *Codec) EncodeResponse(resp *Response) ([]byte, error) {
	if _, err := ParseStatus(int8(resp.Status)); err != nil {
		return nil, err
	}
	f := c.format()
	w := f.NewWriter(128)
	lenAt := w.ReserveInt32()
	w.WriteInt64(resp.InvocationID)
	w.WriteInt8(int8(resp.Status))

	if resp.Failure() {
		if err := w.WriteString(resp.StatusString); err != nil {
			return nil, err
		}
		return sealFrame(f, w, lenAt)
	}

	w.WriteInt8(resp.AppStatus)
	if err := w.WriteString(resp.AppStatusString); err != nil {
		return nil, err
	}
	w.WriteInt32(resp.ClusterRoundTrip)
	if err := w.WriteCount(len(resp.Results)); err != nil {
		return nil, err
	}
	for i, t := range resp.Results {
		if err := t.AppendTo(w); err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
	}
	return sealFrame(f, w, lenAt)
}

func sealFrame(f *wire.Format, w *wire.Writer, lenAt int) ([]byte, error) {
	n := w.Len() - lenAt - 4
	if n > f.MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", wire.ErrFrameTooLarge, n)
	}
	w.PatchInt32(lenAt, int32(n))
	return w.Bytes(), nil
}
