package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/pkg/param"
	"github.com/tuannm99/novavolt/pkg/wire"
)

// Call is one parsed statement: Proc(arg, ...);
//
// Literals:
//
//	NULL            null
//	'text'          STRING ('' or \' for a quote)
//	42, -7          smallest integer type that holds the value
//	1.5, 2e3        FLOAT
//	12.75m          DECIMAL
//	x'cafe'         VARBINARY
//	ts'2011-01-02T03:04:05Z'  TIMESTAMP (RFC 3339)
//	[1, 2, 3]       array of the widest element type
type Call struct {
	Name string
	Args []param.Value
}

var errSyntax = errors.New("syntax error")

// Procedure declares a procedure matching the literal types and fills it.
// The server widens arguments to its own signature.
func (c *Call) Procedure() (*invocation.Procedure, error) {
	params := make([]param.Parameter, len(c.Args))
	for i, v := range c.Args {
		switch {
		case v.IsArray():
			params[i] = param.NewArray(v.Type())
		case v.IsNull():
			// any slot accepts a null; the declared type never reaches the wire
			params[i] = param.New(wire.String)
		default:
			params[i] = param.New(v.Type())
		}
	}
	p, err := invocation.NewProcedure(c.Name, params...)
	if err != nil {
		return nil, err
	}
	for _, v := range c.Args {
		if err := p.Params().Add(v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// String renders c in canonical form: one line, ';' terminated, and read
// back by ParseCall as the same call.
func (c *Call) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('(')
	for i, v := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeLiteral(&b, v)
	}
	b.WriteString(");")
	return b.String()
}

func writeLiteral(b *strings.Builder, v param.Value) {
	if v.IsArray() {
		b.WriteByte('[')
		for i, e := range v.Elems() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeLiteral(b, e)
		}
		b.WriteByte(']')
		return
	}
	if v.IsNull() {
		b.WriteString("NULL")
		return
	}
	switch v.Type() {
	case wire.TinyInt, wire.SmallInt, wire.Integer, wire.BigInt:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case wire.Float:
		s := strconv.FormatFloat(v.Float(), 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		b.WriteString(s)
	case wire.Decimal:
		b.WriteString(v.Decimal().String())
		b.WriteByte('m')
	case wire.String:
		b.WriteString(quote(v.Str()))
	case wire.Varbinary:
		b.WriteByte('x')
		b.WriteString(quote(hex.EncodeToString(v.Bytes())))
	case wire.Timestamp:
		b.WriteString("ts")
		b.WriteString(quote(v.Time().Format(time.RFC3339Nano)))
	}
}

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `''`)

func quote(s string) string { return "'" + quoter.Replace(s) + "'" }

// statementEnd returns the index just past the first ';' outside quotes, or
// -1 while the statement is still open. Quotes follow the literal rules.
func statementEnd(buf string) int {
	p := &parser{s: buf}
	for p.pos < len(p.s) {
		switch p.peek() {
		case '\'':
			if _, err := p.quoted(); err != nil {
				return -1
			}
		case ';':
			return p.pos + 1
		default:
			p.pos++
		}
	}
	return -1
}

type parser struct {
	s   string
	pos int
}

func ParseCall(stmt string) (*Call, error) {
	p := &parser{s: strings.TrimSpace(stmt)}

	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected procedure name")
	}
	p.skipSpace()
	if !p.accept('(') {
		return nil, p.errorf("expected '('")
	}

	call := &Call{Name: name}
	p.skipSpace()
	if !p.accept(')') {
		for {
			v, err := p.value(true)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, v)
			p.skipSpace()
			if p.accept(')') {
				break
			}
			if !p.accept(',') {
				return nil, p.errorf("expected ',' or ')'")
			}
			p.skipSpace()
		}
	}

	p.skipSpace()
	p.accept(';')
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, p.errorf("unexpected input after ')'")
	}
	return call, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d: %s", errSyntax, p.pos+1, fmt.Sprintf(format, args...))
}

func (p *parser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *parser) accept(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && unicode.IsSpace(rune(p.s[p.pos])) {
		p.pos++
	}
}

// ident allows '@' for system procedures and '.' for class-qualified names.
func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '_' || c == '@' || c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.s[start:p.pos]
}

func (p *parser) value(allowArray bool) (param.Value, error) {
	switch c := p.peek(); {
	case c == '\'':
		s, err := p.quoted()
		if err != nil {
			return param.Value{}, err
		}
		return param.String(s), nil
	case c == '[' && allowArray:
		return p.array()
	case c == '-' || c == '+' || c == '.' || c >= '0' && c <= '9':
		return p.number()
	}

	word := p.ident()
	switch {
	case strings.EqualFold(word, "null"):
		if !allowArray {
			return param.Value{}, p.errorf("NULL is not allowed inside an array")
		}
		return param.Null(), nil
	case strings.EqualFold(word, "x") && p.peek() == '\'':
		s, err := p.quoted()
		if err != nil {
			return param.Value{}, err
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return param.Value{}, p.errorf("bad hex literal: %v", err)
		}
		return param.Varbinary(b), nil
	case strings.EqualFold(word, "ts") && p.peek() == '\'':
		s, err := p.quoted()
		if err != nil {
			return param.Value{}, err
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return param.Value{}, p.errorf("bad timestamp: %v", err)
		}
		return param.Timestamp(ts), nil
	case word == "":
		return param.Value{}, p.errorf("expected a value")
	}
	return param.Value{}, p.errorf("unknown literal %q", word)
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.s):
			b.WriteByte(p.s[p.pos+1])
			p.pos += 2
		case c == '\'' && p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'':
			b.WriteByte('\'')
			p.pos += 2
		case c == '\'':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", p.errorf("unterminated string")
}

func (p *parser) number() (param.Value, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
scan:
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' || c == 'e' || c == 'E':
			isFloat = true
		case (c == '-' || c == '+') && (p.s[p.pos-1] == 'e' || p.s[p.pos-1] == 'E'):
		default:
			break scan
		}
		p.pos++
	}
	lit := p.s[start:p.pos]

	if c := p.peek(); c == 'm' || c == 'M' {
		p.pos++
		d, err := decimal.NewFromString(lit)
		if err != nil {
			return param.Value{}, p.errorf("bad decimal %q", lit)
		}
		return param.Decimal(d), nil
	}
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return param.Value{}, p.errorf("bad number %q", lit)
		}
		return param.Float(f), nil
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return param.Value{}, p.errorf("bad integer %q", lit)
	}
	return smallestInt(n), nil
}

func smallestInt(n int64) param.Value {
	switch {
	case n > math.MinInt8 && n <= math.MaxInt8:
		return param.TinyInt(int8(n))
	case n > math.MinInt16 && n <= math.MaxInt16:
		return param.SmallInt(int16(n))
	case n > math.MinInt32 && n <= math.MaxInt32:
		return param.Integer(int32(n))
	}
	return param.BigInt(n)
}

func (p *parser) array() (param.Value, error) {
	p.pos++ // '['
	var elems []param.Value
	p.skipSpace()
	if !p.accept(']') {
		for {
			v, err := p.value(false)
			if err != nil {
				return param.Value{}, err
			}
			elems = append(elems, v)
			p.skipSpace()
			if p.accept(']') {
				break
			}
			if !p.accept(',') {
				return param.Value{}, p.errorf("expected ',' or ']'")
			}
			p.skipSpace()
		}
	}

	// Widen every element to one type through a single-slot set.
	elem := arrayType(elems)
	ps, err := param.NewParameterSet([]param.Parameter{param.NewArray(elem)})
	if err != nil {
		return param.Value{}, err
	}
	if err := ps.AddArray(elems...); err != nil {
		return param.Value{}, fmt.Errorf("array: %w", err)
	}
	return ps.Values()[0], nil
}

func arrayType(elems []param.Value) wire.Type {
	if len(elems) == 0 {
		return wire.TinyInt
	}
	t := elems[0].Type()
	for _, e := range elems[1:] {
		et := e.Type()
		switch {
		case et == t:
		case t.IsInteger() && et.IsInteger():
			t = max(t, et)
		case t == wire.Decimal || et == wire.Decimal:
			t = wire.Decimal
		case t == wire.Float || et == wire.Float:
			t = wire.Float
		}
	}
	return t
}
