// Command sqldocctl is a thin operational CLI over the adapter.Adapter
// contract: point it at a TOML profile and run collection/document
// operations against MariaDB or PostgreSQL without writing Go.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/config"
	"github.com/nuvix/sqldoc/mariadb"
	"github.com/nuvix/sqldoc/observability"
	"github.com/nuvix/sqldoc/postgres"
	"github.com/nuvix/sqldoc/query"
)

var (
	configPath  string
	profileName string
)

var rootCmd = &cobra.Command{
	Use:   "sqldocctl",
	Short: "sqldocctl - operate a sqldoc document engine over MariaDB or PostgreSQL",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "sqldoc.toml", "path to the connection-profile TOML file")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "profile name (defaults to the file's top-level default key)")

	rootCmd.AddCommand(pingCmd, createCollectionCmd, findCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolve loads configPath, picks profileName (or the file default), and
// returns an initialized adapter.Adapter for it.
func resolve(ctx context.Context) (adapter.Adapter, error) {
	profiles, def, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	name := profileName
	if name == "" {
		name = def
	}
	if name == "" {
		return nil, fmt.Errorf("sqldocctl: no --profile given and %s has no default", configPath)
	}
	p, ok := config.Find(profiles, name)
	if !ok {
		return nil, fmt.Errorf("sqldocctl: profile %q not found in %s", name, configPath)
	}

	var a adapter.Adapter
	switch p.Backend {
	case "mariadb":
		a = mariadb.New(p.Config)
	case "postgres":
		a = postgres.New(p.Config)
	default:
		return nil, fmt.Errorf("sqldocctl: unknown backend %q", p.Backend)
	}
	if err := a.Init(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "check connectivity to the configured profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := resolve(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.Ping(ctx); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

var (
	createCollectionIfExists bool
)

var createCollectionCmd = &cobra.Command{
	Use:   "create-collection <name>",
	Short: "create an empty collection's data/_perms table pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := resolve(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.CreateCollection(ctx, args[0], nil, nil, createCollectionIfExists); err != nil {
			return err
		}
		fmt.Printf("collection %q created\n", args[0])
		return nil
	},
}

var (
	findQueriesJSON string
	findLimit       int
	findOffset      int
)

var findCmd = &cobra.Command{
	Use:   "find <collection>",
	Short: "run a Find against a collection and print each matching document's id and attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := resolve(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := adapter.FindOptions{Limit: findLimit, Offset: findOffset}
		if findQueriesJSON != "" {
			qs, err := query.ParseJSONList([]byte(findQueriesJSON))
			if err != nil {
				return fmt.Errorf("sqldocctl: --queries: %w", err)
			}
			opts.Queries = qs
		}

		docs, err := a.Find(ctx, args[0], opts)
		if err != nil {
			return err
		}
		for _, d := range docs {
			fmt.Printf("%s\t%v\n", d.ID, d.Attributes)
		}
		observability.Emit(observability.EventQueryStats, map[string]any{"collection": args[0], "count": len(docs)})
		return nil
	},
}

func init() {
	createCollectionCmd.Flags().BoolVar(&createCollectionIfExists, "if-exists", false, "ignore a duplicate-table error")
	findCmd.Flags().StringVar(&findQueriesJSON, "queries", "", "JSON array of query filters, per the wire format ParseJSONList accepts")
	findCmd.Flags().IntVar(&findLimit, "limit", 25, "maximum documents to return")
	findCmd.Flags().IntVar(&findOffset, "offset", 0, "offset into the result set")
}
