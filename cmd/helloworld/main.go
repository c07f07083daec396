// Command helloworld loads two greetings through the Insert procedure and
// reads the French one back with Select.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/tuannm99/novavolt/internal"
	"github.com/tuannm99/novavolt/internal/logging"
	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/pkg/param"
	"github.com/tuannm99/novavolt/pkg/wire"
	"github.com/tuannm99/novavolt/voltclient"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "config file (yaml, toml or json)")
		addr    = flag.String("addr", "", "server address (overrides config)")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Client.Addr = *addr
	}
	logger := logging.Init(cfg.AppName+"-helloworld", cfg.Log.Level, cfg.Log.Console)

	if err := run(context.Background(), voltclient.ConfigFrom(cfg, &logger), logger); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg voltclient.Config, logger zerolog.Logger) error {
	client, err := voltclient.DialContext(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = client.Close() }()

	str := param.New(wire.String)
	insert, err := invocation.NewProcedure("Insert", str, str, str)
	if err != nil {
		return err
	}

	for _, g := range [][3]string{
		{"Hello", "World", "English"},
		{"Bonjour", "Monde", "French"},
	} {
		params := insert.Params()
		if err := params.AddString(g[0]); err != nil {
			return fmt.Errorf("add parameters %s, %s, %s: %w", g[0], g[1], g[2], err)
		}
		if err := params.AddString(g[1]); err != nil {
			return fmt.Errorf("add parameters %s, %s, %s: %w", g[0], g[1], g[2], err)
		}
		if err := params.AddString(g[2]); err != nil {
			return fmt.Errorf("add parameters %s, %s, %s: %w", g[0], g[1], g[2], err)
		}
		resp, err := client.InvokeContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("invoke procedure: %w", err)
		}
		if resp.Failure() {
			return fmt.Errorf("%s", resp)
		}
		logger.Debug().Str("dialect", g[2]).Msg("inserted")
	}

	sel, err := invocation.NewProcedure("Select", str)
	if err != nil {
		return err
	}
	if err := sel.Params().AddString("French"); err != nil {
		return fmt.Errorf("add parameter French: %w", err)
	}
	resp, err := client.InvokeContext(ctx, sel)
	if err != nil {
		return fmt.Errorf("invoke procedure: %w", err)
	}
	if resp.Failure() {
		return fmt.Errorf("%s", resp)
	}

	fmt.Print(resp)
	return nil
}
