package main

import (
	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/config"
	"github.com/EdvardGK/reduzer-summary/internal/sheets"
	"github.com/spf13/cobra"
)

func authCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage credentials for external services",
	}
	cmd.AddCommand(authSheetsCmd(a))
	return cmd
}

func authSheetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets access in the browser",
		Long: `Run the OAuth2 consent flow and save the resulting token. The client
credentials come from --client-id/--client-secret, the sheets.client_id and
sheets.client_secret settings, or GOOGLE_SHEETS_CLIENT_ID and
GOOGLE_SHEETS_CLIENT_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := sheets.DefaultConfig()
			c.ClientID = a.v.GetString("sheets.client_id")
			c.ClientSecret = a.v.GetString("sheets.client_secret")
			c.TokenFile = config.ExpandPath(a.v.GetString("sheets.token_file"))
			if id, _ := cmd.Flags().GetString("client-id"); id != "" {
				c.ClientID = id
			}
			if secret, _ := cmd.Flags().GetString("client-secret"); secret != "" {
				c.ClientSecret = secret
			}
			c.LoadFromEnv()
			if c.TokenFile == "" {
				c.TokenFile = config.SheetsTokenFile()
			}
			if c.ClientID == "" || c.ClientSecret == "" {
				return common.NewUserError("an OAuth2 client id and secret are required", nil)
			}

			if _, err := sheets.Authenticate(cmd.Context(), c); err != nil {
				return err
			}
			return printf(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess("Token saved to "+c.TokenFile))
		},
	}
	cmd.Flags().String("client-id", "", "OAuth2 client id")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret")
	return cmd
}
