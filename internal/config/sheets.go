package config

import (
	"path/filepath"

	"github.com/EdvardGK/reduzer-summary/internal/sheets"
	"github.com/spf13/viper"
)

// SheetsTokenFile is the default location of the saved OAuth2 token.
func SheetsTokenFile() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sheets-token.json")
}

// LoadSheetsConfig loads Google Sheets configuration. Values come from v
// (config file or REDUZER_SHEETS_* variables) first, then GOOGLE_SHEETS_*
// variables, then defaults.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(v.GetString("sheets.service_account_path"))
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.TokenFile = ExpandPath(v.GetString("sheets.token_file"))
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if v.IsSet("sheets.batch_size") {
		config.BatchSize = v.GetInt("sheets.batch_size")
	}

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if config.TokenFile == "" && config.ServiceAccountPath == "" && config.RefreshToken == "" {
		config.TokenFile = SheetsTokenFile()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
