package main

import (
	"context"
	"os"

	"lab-booking/cmd/bootstrap"
	"lab-booking/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lab-booking",
		Short: "Lab test booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	// Initialize application with all dependencies
	app, err := bootstrap.New()
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	// Run the application
	app.Run()
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and notification dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

// withDB opens a database connection for one-shot commands
func withDB(fn func(db *gorm.DB, log *logrus.Logger) error) error {
	cfg, log, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	return fn(db, log)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB, log *logrus.Logger) error {
				return database.MigrateUp(db)
			})
		},
	})

	// migrate down
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withDB(func(db *gorm.DB, log *logrus.Logger) error {
				return database.MigrateDown(db, steps)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")

			return withDB(func(db *gorm.DB, log *logrus.Logger) error {
				return bootstrap.EnsureAdmin(context.Background(), db, log, email, name, password)
			})
		},
	}
	cmd.Flags().String("email", "admin@lab.com", "Admin email")
	cmd.Flags().String("name", "Admin User", "Admin display name")
	cmd.Flags().String("password", "", "Admin password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
