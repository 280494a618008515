package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cleishm/gobolt"
	"github.com/cleishm/gobolt/packstream"
)

var fanout int

var queryCmd = &cobra.Command{
	Use:   "query <statement>",
	Short: "Run a statement, optionally fanned out across several connections",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return rootCmdLoadConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), args[0], fanout)
	},
}

func init() {
	queryCmd.Flags().IntVar(&fanout, "fanout", 1, "number of connections to run the statement on concurrently")
	rootCmd.AddCommand(queryCmd)
}

// runQuery dials fanout independent connections (one per goroutine, as
// the core requires) and runs statement on each concurrently, printing
// each connection's records as they arrive. It demonstrates that the
// core itself needs no concurrency primitives: only this CLI's
// multi-connection fan-out does, via errgroup.
func runQuery(ctx context.Context, statement string, fanout int) error {
	if fanout < 1 {
		fanout = 1
	}

	target, err := gobolt.ParseURL(connectURL)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < fanout; i++ {
		i := i
		g.Go(func() error {
			return runOne(ctx, target, i, statement)
		})
	}
	return g.Wait()
}

func runOne(ctx context.Context, target *gobolt.Target, worker int, statement string) error {
	conn, err := gobolt.Dial(ctx, target, gobolt.WithBasicAuth(user, password))
	if err != nil {
		return fmt.Errorf("worker %d: dial: %w", worker, err)
	}
	defer conn.Close()

	rs, err := conn.Run(statement, nil)
	if err != nil {
		return fmt.Errorf("worker %d: run: %w", worker, err)
	}
	defer rs.Close()

	n, err := rs.NFields()
	if err != nil {
		return fmt.Errorf("worker %d: %w", worker, err)
	}

	for {
		rec, err := rs.FetchNext()
		if err != nil {
			return fmt.Errorf("worker %d: %w", worker, err)
		}
		if rec == nil {
			break
		}
		fields := make([]string, n)
		for i := 0; i < n; i++ {
			v, _ := rec.Value(i)
			fields[i] = packstream.ToString(v)
		}
		fmt.Printf("[worker %d] %s\n", worker, strings.Join(fields, ", "))
	}
	return nil
}
