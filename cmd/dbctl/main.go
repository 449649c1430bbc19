package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roivaz/commitforge/internal/config"
	"github.com/roivaz/commitforge/internal/db"
	dbmigrate "github.com/roivaz/commitforge/internal/db/migrate"
)

var rootCmd = &cobra.Command{
	Use:   "dbctl",
	Short: "RAG chunk store schema management",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the migration bookkeeping tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithManager(func(manager *dbmigrate.Manager) error {
			return manager.Init(cmd.Context())
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithManager(func(manager *dbmigrate.Manager) error {
			applied, err := manager.Up(cmd.Context())
			if err != nil {
				return err
			}
			printNames(cmd, "applied", applied)
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		return runWithManager(func(manager *dbmigrate.Manager) error {
			undone, err := manager.Down(cmd.Context(), steps)
			printNames(cmd, "rolled back", undone)
			return err
		})
	},
}

var statusCmd = &cobra.Command{
	Use:           "status",
	Short:         "Show applied and pending migrations and the stored chunk count",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := dbmigrate.Open(database.Bun(), config.MigrationsDir())
			if err != nil {
				return err
			}
			if err := manager.Init(cmd.Context()); err != nil {
				return err
			}
			report, err := manager.Report(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pending := 0
			for _, st := range report {
				if st.Applied {
					fmt.Fprintf(out, "%s\tapplied\tgroup %d\t%s\n", st.Name, st.Group, st.AppliedAt.Format(time.RFC3339))
					continue
				}
				pending++
				fmt.Fprintf(out, "%s\tpending\n", st.Name)
			}
			if pending > 0 {
				fmt.Fprintf(out, "%d pending migration(s)\n", pending)
				return nil
			}
			chunks, err := db.NewChunkRepository(database).CountChunks(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "schema current, %d chunks stored\n", chunks)
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:           "verify",
	Short:         "Ensure the database is on the latest schema version",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			return dbmigrate.EnsureCurrent(cmd.Context(), database.Bun(), config.MigrationsDir(), false)
		})
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides POSTGRES_URL)")
	rootCmd.PersistentFlags().String("migrations", "", "Migrations directory (default: migrations embedded in the binary)")
	_ = viper.BindPFlag(config.KeyPostgresURL, rootCmd.PersistentFlags().Lookup("dsn"))
	_ = viper.BindPFlag(config.KeyMigrationsDir, rootCmd.PersistentFlags().Lookup("migrations"))

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(initCmd, migrateCmd, statusCmd, verifyCmd)
	_ = migrateDownCmd.Flags().Int("steps", 1, "Number of migration groups to roll back (0 = all)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dbctl: %v\n", err)
		os.Exit(1)
	}
}

func printNames(cmd *cobra.Command, verb string, names []string) {
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to do")
		return
	}
	for _, n := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, n)
	}
}

func runWithDatabase(fn func(*db.Database) error) error {
	dsn := config.PostgresURL()
	if dsn == "" {
		return errors.New("postgres DSN must be provided via --dsn or POSTGRES_URL")
	}
	database, err := db.NewDatabase(db.Config{DSN: dsn, Debug: config.DBDebug()})
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database)
}

func runWithManager(fn func(*dbmigrate.Manager) error) error {
	return runWithDatabase(func(database *db.Database) error {
		manager, err := dbmigrate.Open(database.Bun(), config.MigrationsDir())
		if err != nil {
			return err
		}
		return fn(manager)
	})
}
