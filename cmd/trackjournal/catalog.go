package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the make and model catalog",
	}
	cmd.AddCommand(newCatalogMakesCmd(), newCatalogModelsCmd())
	return cmd
}

func newCatalogMakesCmd() *cobra.Command {
	var term string
	cmd := &cobra.Command{
		Use:   "makes",
		Short: "List vehicle makes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := buildCatalog(cfg)
			if err != nil {
				return err
			}
			makes, err := resolver.SearchMakes(cmd.Context(), term)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMAKE")
			for _, m := range makes {
				fmt.Fprintf(tw, "%s\t%s\n", m.ID, m.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&term, "query", "q", "", "filter by name")
	return cmd
}

func newCatalogModelsCmd() *cobra.Command {
	var term string
	cmd := &cobra.Command{
		Use:   "models <make-id>",
		Short: "List the models of a make",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := buildCatalog(cfg)
			if err != nil {
				return err
			}
			models, err := resolver.SearchModels(cmd.Context(), args[0], term)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No models for make %q\n", args[0])
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMODEL")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\n", m.ID, m.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&term, "query", "q", "", "filter by name")
	return cmd
}
