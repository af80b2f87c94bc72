package main

import (
	"fmt"

	"github.com/dormdesk/backend/internal/infrastructure/auth"
	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// tokenCmd signs access tokens with the configured secret. Production
// tokens come from the identity provider; these are for development and
// scripted checks.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Access token helpers",
	}
	cmd.AddCommand(tokenIssueCmd())
	return cmd
}

func tokenIssueCmd() *cobra.Command {
	var (
		in       auth.IssueInput
		tenant   string
		building string
	)

	cmd := &cobra.Command{
		Use:     "issue",
		Short:   "Sign an access token",
		Example: "  dormctl token issue --uid line:U123 --role tenant --ttl 1h",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.TenantID, err = optionalUUID("--tenant", tenant); err != nil {
				return err
			}
			if in.BuildingID, err = optionalUUID("--building", building); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tok, err := auth.NewJWTService(cfg.JWT).Issue(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tok)
		},
	}

	cmd.Flags().StringVar(&in.UID, "uid", "", "Subject uid")
	cmd.Flags().StringVar(&in.Role, "role", auth.RoleTenant, "admin or tenant")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Pin the token to a tenant record id")
	cmd.Flags().StringVar(&building, "building", "", "Building id claim")
	cmd.Flags().DurationVar(&in.TTL, "ttl", 0, "Lifetime (default jwt.access_token_expiration)")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

func optionalUUID(flag, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flag, err)
	}
	return &id, nil
}
