package main

import (
	"context"
	"sync"

	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/pkg/param"
	"github.com/tuannm99/novavolt/pkg/table"
	"github.com/tuannm99/novavolt/pkg/wire"
	"github.com/tuannm99/novavolt/server/voltwire"
)

// greetings is the HELLOWORLD table: one (hello, world) pair per dialect.
type greetings struct {
	mu   sync.RWMutex
	rows map[string][2]string
}

func newGreetings() *greetings {
	return &greetings{rows: make(map[string][2]string)}
}

func registerHelloWorld(srv *voltwire.Server, g *greetings) error {
	str := param.New(wire.String)
	if err := srv.Handle("Insert", []param.Parameter{str, str, str}, g.insert); err != nil {
		return err
	}
	return srv.Handle("Select", []param.Parameter{str}, g.selectByDialect)
}

// insert(hello, world, dialect)
func (g *greetings) insert(_ context.Context, req *invocation.Request) (*invocation.Response, error) {
	for _, v := range req.Params {
		if v.IsNull() {
			return nil, voltwire.Graceful("HELLOWORLD columns are not nullable")
		}
	}
	dialect := req.Params[2].Str()

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rows[dialect]; ok {
		return nil, voltwire.Graceful("dialect %q already exists", dialect)
	}
	g.rows[dialect] = [2]string{req.Params[0].Str(), req.Params[1].Str()}
	return nil, nil
}

// selectByDialect(dialect) returns HELLO, WORLD.
func (g *greetings) selectByDialect(_ context.Context, req *invocation.Request) (*invocation.Response, error) {
	b, err := table.NewBuilder(
		table.Column{Name: "HELLO", Type: wire.String},
		table.Column{Name: "WORLD", Type: wire.String},
	)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	row, ok := g.rows[req.Params[0].Str()]
	g.mu.RUnlock()
	if ok {
		if err := b.AddRow(row[0], row[1]); err != nil {
			return nil, err
		}
	}
	return voltwire.Results(b.Build()), nil
}
