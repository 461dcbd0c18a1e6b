package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	httpx "github.com/cwrk-planet/study-room/internal/transport/http"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the page routes in evaluation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printRoutes(cmd.OutOrStdout())
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <path>...",
	Short: "Show which page each path resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printMatches(cmd.OutOrStdout(), args)
	},
}

func printRoutes(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPATH\tEXACT")
	for i, rt := range httpx.PageTable(nil, nil, nil).Routes() {
		path := rt.Path
		if rt.IsFallback() {
			path = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", i+1, rt.Name, path, rt.Exact)
	}
	return tw.Flush()
}

func printMatches(out io.Writer, paths []string) error {
	tbl := httpx.PageTable(nil, nil, nil)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tROUTE\tPARAMS")
	for _, p := range paths {
		m := tbl.Match(p)
		keys := make([]string, 0, len(m.Params))
		for k := range m.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		params := ""
		for i, k := range keys {
			if i > 0 {
				params += " "
			}
			params += k + "=" + m.Params[k]
		}
		if params == "" {
			params = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p, m.Route.Name, params)
	}
	return tw.Flush()
}
