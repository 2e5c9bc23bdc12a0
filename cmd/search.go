package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/spf13/cobra"

	"github.com/UB-Mannheim/maidisco/internal/relay"
	"github.com/UB-Mannheim/maidisco/library/catalog"
)

var searchCMD = &cobra.Command{
	Use:   "search <query>",
	Short: "run one search and print the outcome as JSON",
	Example: `  maidisco search "recent articles on climate resilience in urban planning" --language English
  CATALOG_BACKEND=vufind maidisco search "medieval maps" --year-from 1990`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		_, svc, err := initialize(ctx, cmd)
		if err != nil {
			return err
		}

		out, err := svc.Search(ctx, searchRequestFromFlags(strings.Join(args, " ")))
		if err != nil {
			return errors.Wrap(err, "search")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(out); err != nil {
			return errors.Wrap(err, "encode outcome")
		}
		if out.Failed() {
			return errors.New(out.Error)
		}
		return nil
	},
}

func searchRequestFromFlags(query string) relay.SearchRequest {
	return relay.SearchRequest{
		Query: query,
		Overrides: catalog.Filters{
			Language:     gconfig.Shared.GetString("language"),
			MaterialType: gconfig.Shared.GetString("material-type"),
			YearFrom:     gconfig.Shared.GetString("year-from"),
			YearTo:       gconfig.Shared.GetString("year-to"),
		},
	}
}

func init() {
	rootCMD.AddCommand(searchCMD)
	searchCMD.Flags().String("language", "", "language facet override")
	searchCMD.Flags().String("material-type", "", "material type facet override")
	searchCMD.Flags().String("year-from", "", "earliest publication year")
	searchCMD.Flags().String("year-to", "", "latest publication year")
}
