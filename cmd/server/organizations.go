package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
)

// operatorActor is recorded as the audit actor for CLI verification changes.
const operatorActor = "operator-cli"

func organizationsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organizations",
		Short: "Operator actions on registered organizations",
	}
	cmd.AddCommand(verifyOrganizationCmd(c))
	return cmd
}

func verifyOrganizationCmd(c *cli) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "verify <organization-id>",
		Short: "Set an organization's verification status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, err := id.ParseOrganizationID(args[0])
			if err != nil {
				return err
			}
			next, err := models.ParseVerificationStatus(status)
			if err != nil {
				return err
			}

			if c.cfg.Database.URL == "" {
				return errNoDatabase
			}
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			org, err := a.orgs.SetVerification(cmd.Context(), orgID, next, operatorActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", org.ID, org.Name, org.VerificationStatus)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", string(models.VerificationVerified), "pending, verified or rejected")
	return cmd
}
