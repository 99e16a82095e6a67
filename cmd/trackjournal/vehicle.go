package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-trackjournal/pkg/form"
	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/tui"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

func newVehicleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vehicle",
		Aliases: []string{"vehicles", "v"},
		Short:   "Manage the vehicles in your garage",
	}
	cmd.AddCommand(
		newVehicleListCmd(),
		newVehicleShowCmd(),
		newVehicleAddCmd(),
		newVehicleEditCmd(),
		newVehicleDeleteCmd(),
	)
	return cmd
}

// withUser builds the app, resolves the signed-in user and runs fn.
func withUser(cmd *cobra.Command, fn func(ctx context.Context, a *app, uid string) error) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	user, err := currentUser(ctx, a)
	if err != nil {
		return err
	}
	return fn(ctx, a, user.UID)
}

func ownedVehicle(ctx context.Context, a *app, uid, id string) (vehicle.Vehicle, error) {
	v, err := a.records.Get(ctx, id)
	if err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackGet)
	}
	if v.OwnerID != uid {
		return vehicle.Vehicle{}, store.NotFound()
	}
	return v, nil
}

func newVehicleListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your vehicles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app, uid string) error {
				list, err := a.records.List(ctx, uid)
				if err != nil {
					return store.Normalize(err, store.FallbackList)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), list)
				}
				return writeVehicleTable(cmd.OutOrStdout(), list)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newVehicleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one vehicle as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app, uid string) error {
				v, err := ownedVehicle(ctx, a, uid, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), v)
			})
		},
	}
}

func newVehicleAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Add a vehicle interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app, uid string) error {
				return runEditor(ctx, cmd, a, form.Create(uid))
			})
		},
	}
}

func newVehicleEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a vehicle interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app, uid string) error {
				v, err := ownedVehicle(ctx, a, uid, args[0])
				if err != nil {
					return err
				}
				return runEditor(ctx, cmd, a, form.Edit(&v))
			})
		},
	}
}

func runEditor(ctx context.Context, cmd *cobra.Command, a *app, intent form.Intent) error {
	ctrl, err := form.New(intent, a.catalog, store.NewSubmitter(a.records), form.WithLogger(logger))
	if err != nil {
		return err
	}
	runner := tui.New(tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())))
	saved, err := runner.Run(ctx, ctrl)
	switch {
	case errors.Is(err, tui.ErrCancelled), errors.Is(err, tui.ErrAborted):
		fmt.Fprintln(cmd.ErrOrStderr(), "No changes saved.")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", saved.Title(), saved.ID)
	return nil
}

func newVehicleDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app, uid string) error {
				v, err := ownedVehicle(ctx, a, uid, args[0])
				if err != nil {
					return err
				}
				if !yes {
					driver := tui.NewSurveyDriver(cmd.OutOrStdout())
					ok, err := driver.Confirm(ctx, tui.ConfirmConfig{Message: fmt.Sprintf("Delete %s?", v.Title())})
					if err != nil {
						return err
					}
					if !ok {
						return nil
					}
				}
				if err := a.records.Delete(ctx, v.ID); err != nil {
					return store.Normalize(err, store.FallbackDelete)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", v.Title())
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeVehicleTable(w io.Writer, list []vehicle.Vehicle) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No vehicles yet. Add one with \"trackjournal vehicle add\".")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVEHICLE\tTYPE\tPLATE\tVIN")
	for _, v := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Title(), v.Type.Info().Label, v.LicensePlate, v.VIN)
	}
	return tw.Flush()
}
