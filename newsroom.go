package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/wansing/newsroom/config"
	"github.com/wansing/newsroom/core"
	"github.com/wansing/newsroom/sqldb"
	"github.com/wansing/newsroom/sqldb/mysql"
	"github.com/wansing/newsroom/sqldb/sqlite3"
	"github.com/xo/dburl"
)

var (
	configPath string
	dbArg      string
)

var rootCmd = &cobra.Command{
	Use:           "newsroom",
	Short:         "Manage redactors, topics and newspapers of a newsroom",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional INI config `file`")
	// MySQL: collation should be utf8mb4_unicode_ci
	rootCmd.PersistentFlags().StringVar(&dbArg, "db", "", "sql database url, see github.com/xo/dburl (default "+config.DefaultDB+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db") {
		cfg.DB = dbArg
	}
	return cfg, nil
}

// openDB opens and pings the database and creates the tables if necessary.
func openDB(rawURL string) (*sql.DB, *dburl.URL, error) {

	dbURL, err := dburl.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing database url: %w", err)
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sql database: %w", err)
	}

	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("pinging sql database: %w", err)
	}

	if err = sqldb.CreateSchema(sqlDB, dbURL.Driver); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	return sqlDB, dbURL, nil
}

func newSessionStore(sqlDB *sql.DB, driver string) (scs.Store, error) {
	switch driver {
	case "mysql":
		return mysql.NewSessionStore(sqlDB)
	case "sqlite3":
		return sqlite3.NewSessionStore(sqlDB)
	default:
		return nil, fmt.Errorf("unknown database backend: %s", driver)
	}
}

// newCoreDB assembles the storage. Sessions are initialized separately because the CLI doesn't need them.
func newCoreDB(sqlDB *sql.DB) *core.CoreDB {
	return &core.CoreDB{
		NewspaperDB: sqldb.NewNewspaperDB(sqlDB),
		RedactorDB:  sqldb.NewRedactorDB(sqlDB),
		TopicDB:     sqldb.NewTopicDB(sqlDB),
		Now:         time.Now,
	}
}
