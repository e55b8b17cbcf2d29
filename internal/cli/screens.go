package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/five82/brokerdesk/internal/app"
	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/export"
	"github.com/five82/brokerdesk/internal/session"
	"github.com/five82/brokerdesk/internal/tableview"
)

// viewFlags are the table pipeline inputs shared by list and export.
type viewFlags struct {
	search   string
	filters  []string
	pageSize string
}

func (f *viewFlags) register(cmd *cobra.Command, defaultSize string) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "free-text search")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "structured filter key=value (repeatable)")
	cmd.Flags().StringVar(&f.pageSize, "page-size", defaultSize, "rows to show: a number or \"all\"")
}

// state turns the flags into the screen's filter state. Unknown filter keys,
// unknown options, and malformed date ranges are rejected.
func (f *viewFlags) state(screen catalog.Screen, fallback tableview.PageSize) (tableview.State, error) {
	size := fallback
	if strings.TrimSpace(f.pageSize) != "" {
		parsed, err := tableview.ParsePageSize(f.pageSize)
		if err != nil {
			return tableview.State{}, err
		}
		size = parsed
	}

	st := tableview.NewState(size)
	st.SearchText = f.search
	for _, raw := range f.filters {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return tableview.State{}, fmt.Errorf("filter %q: want key=value", raw)
		}
		p, ok := screen.Filter.Predicate(key)
		if !ok {
			return tableview.State{}, fmt.Errorf("filter %q: %s has no such filter (have %s)", key, screen.ID, filterKeys(screen))
		}
		value = strings.TrimSpace(value)
		if tableview.Active(value) {
			if len(p.Options) > 0 {
				matched, ok := matchOption(p.Options, value)
				if !ok {
					return tableview.State{}, fmt.Errorf("filter %s: %q is not one of %s", key, value, strings.Join(p.Options, ", "))
				}
				value = matched
			} else if _, _, err := tableview.ParseDateRange(value); err != nil {
				return tableview.State{}, fmt.Errorf("filter %s: %w", key, err)
			}
		}
		st = st.WithStructured(key, value)
	}
	return st, nil
}

func matchOption(options []string, value string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt, value) {
			return opt, true
		}
	}
	return "", false
}

func filterKeys(screen catalog.Screen) string {
	if len(screen.Filter.Predicates) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(screen.Filter.Predicates))
	for _, p := range screen.Filter.Predicates {
		keys = append(keys, p.Key)
	}
	return strings.Join(keys, ", ")
}

// openScreen resolves id for the signed-in role and fetches its rows.
func (r *runner) openScreen(cmd *cobra.Command, id string) (catalog.Screen, []brokerapi.Record, error) {
	s := r.env.Session.Current()
	if !s.Valid() {
		return catalog.Screen{}, nil, errNotSignedIn
	}
	screen, ok := catalog.Lookup(id)
	if !ok {
		return catalog.Screen{}, nil, fmt.Errorf("unknown screen %q (run \"brokerdesk screens\")", id)
	}
	if !screen.Allows(s.Role) {
		return catalog.Screen{}, nil, fmt.Errorf("screen %q is not available to %s accounts", id, s.Role)
	}
	if err := r.env.Loader.Load(cmd.Context(), screen); err != nil {
		return catalog.Screen{}, nil, fmt.Errorf("load %s: %s", screen.ID, brokerapi.Message(err))
	}
	return screen, r.env.Store.Snapshot(screen.ID).Items, nil
}

func newScreensCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "screens",
		Short: "List the screens available to the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := r.env.Session.Current()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)

			if !s.Valid() {
				t.AppendHeader(table.Row{"Screen", "Title", "Roles"})
				for _, screen := range catalog.All() {
					t.AppendRow(table.Row{screen.ID, screen.Title, roleNames(screen.Roles)})
				}
				t.Render()
				return nil
			}

			t.AppendHeader(table.Row{"Screen", "Title", "Access", "Filters"})
			for _, screen := range catalog.ForRole(s.Role) {
				access := "view"
				if screen.Editable(s.Role) {
					access = "edit"
				}
				t.AppendRow(table.Row{screen.ID, screen.Title, access, filterKeys(screen)})
			}
			t.Render()
			return nil
		},
	}
}

func roleNames(roles []session.Role) string {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.String()
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func newListCommand(r *runner) *cobra.Command {
	var (
		view   viewFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "list <screen>",
		Short: "Print one page of a screen",
		Long: `Fetch a screen's collection and print it through the same search,
filters, and page size the console uses.

The default output is a table on a terminal and CSV otherwise.`,
		Example: `  # Sold condominiums
  brokerdesk list properties --filter category=condominium --filter status=sold

  # Sales encoded in March, everything, as JSON
  brokerdesk list sales-admin --filter reserved=2024-03-01..2024-03-31 --page-size all -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd, output)
			if err != nil {
				return err
			}
			screen, items, err := r.openScreen(cmd, args[0])
			if err != nil {
				return err
			}
			fallback := screen.PageSize
			if !screen.PageSize.IsAll() {
				fallback = r.env.Config.PageSize
			}
			st, err := view.state(screen, fallback)
			if err != nil {
				return err
			}
			res := screen.Apply(items, st)
			return export.Write(cmd.OutOrStdout(), format, export.FromResult(screen, res))
		},
	}
	view.register(cmd, "")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, csv, json, or xlsx")
	return cmd
}

// outputFormat resolves --output, defaulting by whether stdout is a terminal.
// Spreadsheets are never written to a terminal.
func outputFormat(cmd *cobra.Command, name string) (export.Format, error) {
	tty := isTerminal(cmd.OutOrStdout())
	if strings.TrimSpace(name) == "" {
		if tty {
			return export.FormatTable, nil
		}
		return export.FormatCSV, nil
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return "", err
	}
	if format == export.FormatXLSX && tty {
		return "", errors.New("refusing to write a spreadsheet to the terminal; redirect output or use \"export\"")
	}
	return format, nil
}

func newExportCommand(r *runner) *cobra.Command {
	var (
		view viewFlags
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export <screen>",
		Short: "Write a screen to a file",
		Long: `Fetch a screen's collection and write it to a file. The format follows
the extension: .xlsx, .csv, .json, or .txt for a text table. Every matching
row is written unless --page-size says otherwise.`,
		Example: `  brokerdesk export licensed --out licensed.xlsx
  brokerdesk export my-sales --filter status=approved --out approved.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(out) == "" {
				return errors.New("--out is required")
			}
			if _, err := export.FormatForPath(out); err != nil {
				return err
			}
			screen, items, err := r.openScreen(cmd, args[0])
			if err != nil {
				return err
			}
			st, err := view.state(screen, tableview.All)
			if err != nil {
				return err
			}
			res := screen.Apply(items, st)
			if err := export.WriteFile(out, export.FromResult(screen, res)); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(res.Displayed), out)
			return nil
		},
	}
	view.register(cmd, tableview.All.String())
	cmd.Flags().StringVar(&out, "out", "", "destination file (.xlsx, .csv, .json, .txt)")
	return cmd
}

func newDashboardCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show row counts for every available screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := r.env.Session.Current()
			if !s.Valid() {
				return errNotSignedIn
			}
			counts, err := app.Dashboard(cmd.Context(), r.env.Loader, s.Role)
			if err != nil {
				return fmt.Errorf("dashboard: %s", brokerapi.Message(err))
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.SetTitle("Dashboard")
			t.AppendHeader(table.Row{"Screen", "Rows", "Status"})
			failed := 0
			for _, c := range counts {
				if c.Err != nil {
					failed++
					t.AppendRow(table.Row{c.Screen.Title, "-", brokerapi.Message(c.Err)})
					continue
				}
				t.AppendRow(table.Row{c.Screen.Title, c.Total, "ok"})
			}
			t.Render()
			if failed > 0 {
				return fmt.Errorf("%d of %d screens failed to load", failed, len(counts))
			}
			return nil
		},
	}
}
