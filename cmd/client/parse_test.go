package main

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/pkg/param"
	"github.com/tuannm99/novavolt/pkg/table"
	"github.com/tuannm99/novavolt/pkg/wire"
	"github.com/tuannm99/novavolt/server/voltwire"
	"github.com/tuannm99/novavolt/voltclient"
)

func TestParseCall_Literals(t *testing.T) {
	call, err := ParseCall(`Insert('it''s', -7, 300, 70000, 1e12, 1.5, 12.75m, NULL, x'cafe', ts'2011-01-02T03:04:05Z');`)
	require.NoError(t, err)
	require.Equal(t, "Insert", call.Name)
	require.Len(t, call.Args, 10)

	types := make([]wire.Type, len(call.Args))
	for i, v := range call.Args {
		types[i] = v.Type()
	}
	require.Equal(t, []wire.Type{
		wire.String, wire.TinyInt, wire.SmallInt, wire.Integer, wire.Float,
		wire.Float, wire.Decimal, wire.Null, wire.Varbinary, wire.Timestamp,
	}, types)

	require.Equal(t, "it's", call.Args[0].Str())
	require.Equal(t, int64(-7), call.Args[1].Int())
	require.True(t, decimal.RequireFromString("12.75").Equal(call.Args[6].Decimal()))
	require.True(t, call.Args[7].IsNull())
	require.Equal(t, []byte{0xca, 0xfe}, call.Args[8].Bytes())
	require.Equal(t, time.Date(2011, 1, 2, 3, 4, 5, 0, time.UTC), call.Args[9].Time())
}

func TestParseCall_Arrays(t *testing.T) {
	call, err := ParseCall(`Sum([1, 300, 2], ['a', 'b'], [])`)
	require.NoError(t, err)
	require.Len(t, call.Args, 3)

	ints := call.Args[0]
	require.True(t, ints.IsArray())
	require.Equal(t, wire.SmallInt, ints.Type())
	for _, e := range ints.Elems() {
		require.Equal(t, wire.SmallInt, e.Type())
	}
	require.Equal(t, wire.String, call.Args[1].Type())
	require.Empty(t, call.Args[2].Elems())

	_, err = ParseCall(`Sum([1, 'a'])`)
	require.ErrorIs(t, err, wire.ErrTypeMismatch)
}

func TestParseCall_Syntax(t *testing.T) {
	for _, stmt := range []string{
		``,
		`Insert`,
		`Insert(`,
		`Insert('a'`,
		`Insert('a' 'b')`,
		`Insert('unterminated)`,
		`Insert(bogus)`,
		`Insert(x'zz')`,
		`Insert(1) extra`,
		`Insert([NULL])`,
	} {
		t.Run(stmt, func(t *testing.T) {
			_, err := ParseCall(stmt)
			require.Error(t, err)
		})
	}

	call, err := ParseCall("  @Ping ( ) ; ")
	require.NoError(t, err)
	require.Equal(t, "@Ping", call.Name)
	require.Empty(t, call.Args)
}

func TestCall_Procedure(t *testing.T) {
	call, err := ParseCall(`Mixed(NULL, 5, ['x'])`)
	require.NoError(t, err)

	proc, err := call.Procedure()
	require.NoError(t, err)
	require.True(t, proc.Params().Complete())
	require.Equal(t, []param.Parameter{
		param.New(wire.String), param.New(wire.TinyInt), param.NewArray(wire.String),
	}, proc.Parameters())
}

func TestStatementEnd(t *testing.T) {
	require.Equal(t, len(`Select('French');`), statementEnd(`Select('French');`))
	require.Equal(t, -1, statementEnd(`Select('a;b')`))
	require.Equal(t, -1, statementEnd(`Select('it\';')`))
	require.Equal(t, -1, statementEnd(`Select('it'';')`))
	require.Equal(t, 4, statementEnd(`A(); B();`))
}

func TestStmtBuffer(t *testing.T) {
	var sb stmtBuffer
	stmt, ok := sb.feed("Insert('a;")
	require.False(t, ok)
	require.True(t, sb.pending())

	stmt, ok = sb.feed("b', 1); trailing")
	require.True(t, ok)
	require.Equal(t, "Insert('a; b', 1);", stmt)
	require.False(t, sb.pending())

	_, ok = sb.feed("Select(")
	require.False(t, ok)
	sb.reset()
	require.False(t, sb.pending())
}

func TestMetaCommand(t *testing.T) {
	var out bytes.Buffer
	handled, quit := metaCommand("\\q", &out)
	require.True(t, handled)
	require.True(t, quit)

	handled, quit = metaCommand("\\help", &out)
	require.True(t, handled)
	require.False(t, quit)
	require.Contains(t, out.String(), "meta commands")

	out.Reset()
	handled, _ = metaCommand("\\history", &out)
	require.True(t, handled)
	require.Equal(t, "unknown command: \\history\n", out.String())

	handled, _ = metaCommand("Select('x');", &out)
	require.False(t, handled)
}

func TestCall_StringCanonical(t *testing.T) {
	call, err := ParseCall("Insert( 'a  b' ,\n\t 1 )")
	require.NoError(t, err)
	require.Equal(t, "Insert('a  b', 1);", call.String())

	call, err = ParseCall(`F(2.0, 'it\'s', x'CAFE', 12.50m, NULL, ts'2011-01-02T03:04:05.5Z', [1, 300], 'c:\\tmp')`)
	require.NoError(t, err)
	require.Equal(t,
		`F(2.0, 'it''s', x'cafe', 12.5m, NULL, ts'2011-01-02T03:04:05.5Z', [1, 300], 'c:\\tmp');`,
		call.String())

	again, err := ParseCall(call.String())
	require.NoError(t, err)
	require.Equal(t, call.String(), again.String())
	require.Len(t, again.Args, len(call.Args))
	for i := range call.Args {
		require.Equal(t, call.Args[i].Type(), again.Args[i].Type(), "arg %d", i)
	}
	require.Equal(t, "it's", again.Args[1].Str())
	require.Equal(t, `c:\tmp`, again.Args[7].Str())
}

func TestExecute(t *testing.T) {
	srv := voltwire.NewServer(voltwire.ServerConfig{})
	require.NoError(t, srv.Handle("Echo", []param.Parameter{param.New(wire.BigInt)},
		func(_ context.Context, req *invocation.Request) (*invocation.Response, error) {
			b, err := table.NewBuilder(table.Column{Name: "N", Type: wire.BigInt})
			if err != nil {
				return nil, err
			}
			if err := b.AddRow(req.Params[0].Int()); err != nil {
				return nil, err
			}
			return voltwire.Results(b.Build()), nil
		}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(context.Background(), ln)
	}()
	defer func() {
		_ = srv.Close()
		<-done
	}()

	cli, err := voltclient.Dial(voltclient.Config{Addr: ln.Addr().String(), RWTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer func() { _ = cli.Close() }()

	var out bytes.Buffer
	require.NoError(t, execute(context.Background(), cli, "Echo(42);", &out))
	require.Equal(t, "N \n--\n42\n(1 rows)\n", out.String())

	err = execute(context.Background(), cli, "Missing();", &out)
	require.EqualError(t, err, "invocation: GRACEFUL_FAILURE: Procedure Missing was not found")
}
