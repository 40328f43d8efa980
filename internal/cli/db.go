package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factline/internal/model"
	"github.com/ppiankov/factline/internal/pipeline"
	"github.com/ppiankov/factline/internal/store"
)

var (
	queryDB     string
	queryLimit  int
	queryStatus string
)

// dbCmd groups queries over a persisted record database.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Query persisted fact records",
	Long: `Query a SQLite database written by 'factline scan --db' or
'factline batch --db'.

Example:
  factline db list --db facts.db
  factline db list --db facts.db --status review
  factline db facts MONEY --db facts.db --limit 20
  factline db show call-2025-03-10 --db facts.db
  factline db delete call-2025-03-10 --db facts.db`,
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		docs, err := s.ListDocuments(context.Background(), store.ListOpts{Limit: queryLimit, Status: queryStatus})
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("No documents stored.")
			return nil
		}
		for _, d := range docs {
			fmt.Printf("%-30s %-8s facts=%-3d entities=%-3d flags=%d\n",
				d.DocumentID, d.Status, d.Facts, d.Entities, d.Contradictions)
		}
		return nil
	},
}

var dbFactsCmd = &cobra.Command{
	Use:   "facts <kind>",
	Short: "List facts of one kind across all documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := model.Kind(strings.ToUpper(args[0]))
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		rows, err := s.FactsByKind(context.Background(), kind, queryLimit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Printf("No %s facts stored.\n", kind)
			return nil
		}
		for _, r := range rows {
			fmt.Printf("%-30s %-8s %q (conf %.2f)\n", r.DocumentID, r.Fact.ID, r.Fact.SourceText, r.Fact.Confidence)
		}
		return nil
	},
}

var dbShowCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Print one stored record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		rec, err := s.GetRecord(context.Background(), args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("document %q not found", args[0])
		}
		data, err := pipeline.RenderJSON(rec)
		if err != nil {
			return err
		}
		fmt.Print(data)
		return nil
	},
}

var dbDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Remove a stored record and its facts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		rec, err := s.GetRecord(context.Background(), args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("document %q not found", args[0])
		}
		if err := s.DeleteRecord(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s (%d facts)\n", args[0], len(rec.Facts))
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.Stats(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Documents:      %d\n", st.Documents)
		fmt.Printf("Facts:          %d\n", st.Facts)
		fmt.Printf("Entities:       %d\n", st.Entities)
		fmt.Printf("Contradictions: %d\n", st.Flags)
		fmt.Printf("DB size:        %d bytes\n", st.DBSizeBytes)
		return nil
	},
}

func openStore() (store.Store, error) {
	if queryDB == "" {
		return nil, fmt.Errorf("--db is required")
	}
	if _, err := os.Stat(queryDB); err != nil {
		return nil, fmt.Errorf("database %s: %w", queryDB, err)
	}
	return store.NewStore(queryDB)
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbFactsCmd)
	dbCmd.AddCommand(dbShowCmd)
	dbCmd.AddCommand(dbDeleteCmd)
	dbCmd.AddCommand(dbStatsCmd)

	dbCmd.PersistentFlags().StringVar(&queryDB, "db", "", "SQLite database path")
	dbCmd.PersistentFlags().IntVar(&queryLimit, "limit", 100, "maximum rows to return")
	dbListCmd.Flags().StringVar(&queryStatus, "status", "", "filter by decision status (ok, review)")
}
