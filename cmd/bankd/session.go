package main

import (
	"github.com/JMan003/banking-system-project/cmd/httpserver"
	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/sessionlock"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and repair session locks.",
}

var (
	releaseKind string
	releaseID   int32
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Force release the session lock of one customer or staff member.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind := domain.Kind(releaseKind)
		if kind != domain.KindCustomer && kind != domain.KindStaff {
			return errors.Errorf("--kind must be %q or %q", domain.KindCustomer, domain.KindStaff)
		}

		if releaseID <= 0 {
			return errors.New("--id must be positive")
		}

		config, logger, err := setup()
		if err != nil {
			return err
		}

		locker, closeLocker, err := httpserver.NewSessionLocker(config)
		if err != nil {
			return err
		}
		defer closeLocker()

		id := sessionlock.Identity{Kind: kind, ID: releaseID}
		if err := locker.ForceRelease(logger.WithContext(cmd.Context()), id); err != nil {
			return err
		}

		color.Green("released %s", id)

		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove session locks left behind by processes that died.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, logger, err := setup()
		if err != nil {
			return err
		}

		locker, closeLocker, err := httpserver.NewSessionLocker(config)
		if err != nil {
			return err
		}
		defer closeLocker()

		n, err := locker.Reconcile(logger.WithContext(cmd.Context()))
		if err != nil {
			return err
		}

		if n == 0 {
			color.Cyan("no stale session locks")
			return nil
		}

		color.Yellow("removed %d stale session locks", n)

		return nil
	},
}

func init() {
	releaseCmd.Flags().StringVar(&releaseKind, "kind", string(domain.KindCustomer), "identity kind: customer or staff")
	releaseCmd.Flags().Int32Var(&releaseID, "id", 0, "account or staff id")

	if err := releaseCmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}

	sessionCmd.AddCommand(releaseCmd)
	sessionCmd.AddCommand(reconcileCmd)
}
