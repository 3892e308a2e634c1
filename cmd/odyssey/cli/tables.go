package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-cms/internal/content/posts"
	"github.com/odyssey-erp/odyssey-cms/internal/content/projects"
	"github.com/odyssey-erp/odyssey-cms/internal/content/properties"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

var schemas = map[string]tablestate.Schema{
	properties.Table: properties.Schema,
	posts.Table:      posts.Schema,
	projects.Table:   projects.Schema,
}

// Explanation is what "tables explain" prints for one address bar URL.
type Explanation struct {
	Table     string              `json:"table"`
	Canonical string              `json:"canonical"`
	Backend   map[string][]string `json:"backend"`
	Dropped   []string            `json:"dropped,omitempty"`
}

// Explain decodes raw (a full URL or only its query) the way the admin table
// would and reports the canonical query, the backend parameters and the
// parameters that were ignored.
func Explain(table, raw string) (Explanation, error) {
	schema, ok := schemas[table]
	if !ok {
		return Explanation{}, fmt.Errorf("unknown table %q (known: %s)", table, strings.Join(tableNames(), ", "))
	}
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return Explanation{}, fmt.Errorf("parse query: %w", err)
	}
	st := tablestate.Decode(schema, q)
	canonical := tablestate.Encode(schema, st)

	var dropped []string
	for key, values := range q {
		if got, ok := canonical[key]; !ok || strings.Join(got, ",") != strings.Join(values, ",") {
			dropped = append(dropped, key+"="+strings.Join(values, ","))
		}
	}
	sort.Strings(dropped)

	return Explanation{
		Table:     table,
		Canonical: canonical.Encode(),
		Backend:   tablestate.NewListQuery(schema, st).Values(),
		Dropped:   dropped,
	}, nil
}

func tableNames() []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Work with admin table URLs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the admin tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range tableNames() {
				s := schemas[name]
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tsizes=%v\tsort=%v\n", name, s.PageSizeOptions(), s.SortColumns)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "explain <table> <url-or-query>",
		Short: "Show how a table reads an address bar URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := Explain(args[0], args[1])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ex)
		},
	})
	return cmd
}
