// Package config provides configuration management for the provsync CLI.
//
// Settings come from an INI file with sections for the database, SharePoint,
// and each job, layered under environment variables and CLI flags.
package config

import (
	"fmt"
	"strings"
)

// Config holds all CLI configuration options.
type Config struct {
	Verbose    bool             `koanf:"verbose"`
	Output     string           `koanf:"output"`
	Database   DatabaseConfig   `koanf:"database"`
	SharePoint SharePointConfig `koanf:"sharepoint"`
	Sync       SyncConfig       `koanf:"sync"`
	Export     ExportConfig     `koanf:"export"`
	Import     ImportConfig     `koanf:"import"`
}

// DatabaseConfig holds SQL Server connection settings. DriverConn, when set,
// is a complete connection string used verbatim before any other strategy.
type DatabaseConfig struct {
	Server     string `koanf:"server"`
	Database   string `koanf:"database"`
	Username   string `koanf:"username"`
	Password   string `koanf:"password"`
	SSO        string `koanf:"sso"` // "yes" enables trusted connections
	DriverConn string `koanf:"driver_conn"`
}

// Validate checks that at least one connection strategy is configured.
func (c *DatabaseConfig) Validate() error {
	if c.DriverConn != "" {
		return nil
	}
	if c.Server == "" || c.Database == "" {
		return fmt.Errorf("database.server and database.database are required when database.driver_conn is not set")
	}
	return nil
}

// SharePointConfig holds SharePoint site and credential settings.
type SharePointConfig struct {
	SiteURL  string `koanf:"site_url"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Validate checks that the site and credentials are present.
func (c *SharePointConfig) Validate() error {
	if c.SiteURL == "" {
		return fmt.Errorf("sharepoint.site_url is required")
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("sharepoint.username and sharepoint.password are required")
	}
	return nil
}

// SyncConfig configures the roster sync job.
type SyncConfig struct {
	FilePath    string `koanf:"file_path"` // server-relative CSV path
	Table       string `koanf:"table"`
	BackupTable string `koanf:"backup_table"`
	KeyColumn   string `koanf:"key_column"`
	Columns     string `koanf:"columns"` // comma-separated tracked columns
}

// ColumnList splits the tracked column names.
func (c *SyncConfig) ColumnList() []string {
	var cols []string
	for _, col := range strings.Split(c.Columns, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

// Validate checks the fields the sync job cannot run without.
func (c *SyncConfig) Validate() error {
	switch {
	case c.FilePath == "":
		return fmt.Errorf("sync.file_path is required")
	case c.Table == "":
		return fmt.Errorf("sync.table is required")
	case c.KeyColumn == "":
		return fmt.Errorf("sync.key_column is required")
	case len(c.ColumnList()) == 0:
		return fmt.Errorf("sync.columns is required")
	}
	return nil
}

// ExportConfig configures the TIN report export job.
type ExportConfig struct {
	TinsPath     string `koanf:"tins_path"` // server-relative CSV with the TIN list
	ReportFolder string `koanf:"report_folder"`
	SourceTable  string `koanf:"source_table"`
	TinColumn    string `koanf:"tin_column"`
}

// Validate checks the fields the export job cannot run without.
func (c *ExportConfig) Validate() error {
	switch {
	case c.TinsPath == "":
		return fmt.Errorf("export.tins_path is required")
	case c.ReportFolder == "":
		return fmt.Errorf("export.report_folder is required")
	case c.SourceTable == "":
		return fmt.Errorf("export.source_table is required")
	}
	return nil
}

// ImportConfig configures the latest-file CSV import job.
type ImportConfig struct {
	Folder    string `koanf:"folder"`
	Pattern   string `koanf:"pattern"`
	Table     string `koanf:"table"`
	BatchSize int    `koanf:"batch_size"`
	Encoding  string `koanf:"encoding"`
}

// Validate checks the fields the import job cannot run without.
func (c *ImportConfig) Validate() error {
	switch {
	case c.Folder == "":
		return fmt.Errorf("import.folder is required")
	case c.Table == "":
		return fmt.Errorf("import.table is required")
	}
	return nil
}
