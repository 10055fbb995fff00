// server/cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"edc-panorama-api-server/config"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/logging"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/term"
)

var configDir string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "panorama",
	Short: "EDC Panorama inventory API server",
	RunE:  runServe,
}

// loadConfig reads and validates the configuration, then installs the logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	logging.Setup(cfg.Log, os.Stderr)
	return cfg, nil
}

// openStore connects to MongoDB and makes sure indexes exist. The caller must
// disconnect the returned client.
func openStore(ctx context.Context, cfg config.Config) (*mongo.Client, *database.MongoStore, error) {
	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	store := database.NewMongoStore(client.Database(cfg.Mongo.DBName))
	if err := store.EnsureIndexes(ctx); err != nil {
		database.Disconnect(client)
		return nil, nil, fmt.Errorf("creating indexes: %w", err)
	}
	return client, store, nil
}

func adminSeed(cfg config.Config) database.AdminSeed {
	return database.AdminSeed{
		Email:      cfg.Admin.Email,
		Password:   cfg.Admin.Password,
		FirstName:  cfg.Admin.FirstName,
		LastName:   cfg.Admin.LastName,
		BcryptCost: cfg.Auth.BcryptCost,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the default configuration and the bootstrap administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		client, store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Disconnect(client)

		created, err := database.SeedConfig(ctx, store)
		if err != nil {
			return fmt.Errorf("seeding config: %w", err)
		}
		fmt.Printf("Default configuration written: %t\n", created)

		if cfg.Admin.Password == "" {
			fmt.Println("No admin password configured, administrator not seeded.")
			return nil
		}
		created, err = database.SeedAdmin(ctx, store, adminSeed(cfg))
		if err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
		fmt.Printf("Administrator %s created: %t\n", cfg.Admin.Email, created)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		seed := adminSeed(cfg)
		seed.Email, _ = cmd.Flags().GetString("email")
		seed.FirstName, _ = cmd.Flags().GetString("first-name")
		seed.LastName, _ = cmd.Flags().GetString("last-name")
		if p, _ := cmd.Flags().GetString("password"); p != "" {
			seed.Password = p
		} else if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Print("Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			seed.Password = string(raw)
		}

		ctx := cmd.Context()
		client, store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Disconnect(client)

		created, err := database.SeedAdmin(ctx, store, seed)
		if err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}
		if !created {
			return fmt.Errorf("an account already exists for %s", seed.Email)
		}
		fmt.Printf("Administrator %s created\n", seed.Email)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "./config", "Directory holding config.yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateAdminCmd)
	userCreateAdminCmd.Flags().String("email", "", "Administrator email")
	userCreateAdminCmd.Flags().String("password", "", "Administrator password (prompted when omitted on a terminal, else ADMIN_PASSWORD)")
	userCreateAdminCmd.Flags().String("first-name", "Admin", "First name")
	userCreateAdminCmd.Flags().String("last-name", "", "Last name")
	userCreateAdminCmd.MarkFlagRequired("email")
}
