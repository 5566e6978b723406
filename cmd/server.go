package cmd

import (
	"context"
	"fmt"
	"log"

	"backend/api/integrations"
	"backend/database"
	"backend/scheduler"
	"backend/server"

	"github.com/urfave/cli/v3"
)

func ServerCli() *cli.Command {
	cmd := &cli.Command{
		Name:  "backend",
		Usage: "run the integration sync and notification core",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Sources: cli.EnvVars("DB_BACKEND"),
				Name:    "db-backend",
				Aliases: []string{"db"},
				Value:   "sqlite",
				Usage:   "database driver to use (sqlite or postgres)",
			},
			&cli.StringFlag{
				Sources: cli.EnvVars("DB_PATH"),
				Name:    "db-path",
				Aliases: []string{"dp"},
				Value:   "data.db",
				Usage:   "For sqlite the path to the database file",
			},
			&cli.StringFlag{
				Sources: cli.EnvVars("DB_URL"),
				Name:    "db-url",
				Value:   "",
				Usage:   "For postgres the connection DSN",
			},
			&cli.BoolFlag{
				Sources: cli.EnvVars("DEBUG"),
				Name:    "debug",
				Aliases: []string{"d"},
				Value:   false,
				Usage:   "enable debug mode (drops and recreates all tables)",
			},
			&cli.StringFlag{
				Sources: cli.EnvVars("HOST"),
				Name:    "host",
				Aliases: []string{"b"},
				Value:   "127.0.0.1",
				Usage:   "server bind address",
			},
			&cli.IntFlag{
				Sources: cli.EnvVars("PORT"),
				Name:    "port",
				Aliases: []string{"p"},
				Value:   1984,
				Usage:   "server port",
			},
			&cli.StringFlag{
				Sources: cli.EnvVars("ROOT_PASSWORD"),
				Name:    "root-password",
				Value:   "password",
				Usage:   "password of the bootstrap admin user",
			},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			database.DB = database.SetupDatabase(
				c.String("db-backend"),
				c.String("db-path"),
				c.String("db-url"),
				c.Bool("debug"),
			)

			if _, err := server.CreateRootUser(database.DB, "admin", c.String("root-password")); err != nil {
				return fmt.Errorf("failed to create root user: %v", err)
			}

			service := integrations.NewIntegrationService(database.DB)
			integrationScheduler := scheduler.NewIntegrationScheduler(database.DB, service)
			service.BindScheduler(integrationScheduler)

			if err := integrationScheduler.Initialize(); err != nil {
				return fmt.Errorf("failed to start scheduler: %v", err)
			}
			defer integrationScheduler.Stop()

			s, fullHost := server.BackendServer(database.DB, service, integrationScheduler, c.String("host"), c.Int("port"))
			log.Printf("Starting server on %s", fullHost)

			return s.ListenAndServe()
		},
	}

	return cmd
}
