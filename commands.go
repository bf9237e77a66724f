package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"holiday-service/internal/db"
	"holiday-service/internal/jobs"
	"holiday-service/internal/moderation"
	"holiday-service/internal/rabbitmq"
	"holiday-service/internal/repositories"
	"holiday-service/internal/services"
	"holiday-service/internal/telemetry"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the service schema and the job queue schema",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			database, err := db.ConnectAndMigrate(c.Context, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := jobs.Migrate(c.Context, cfg.DB.DSN); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func purgeAccountCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-account",
		Usage: "Run the account deletion cascade for one user synchronously",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Usage:    "Internal user `ID` to delete",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			userID, err := uuid.Parse(c.String("user"))
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			database, err := db.Connect(c.Context, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer database.Close()

			publisher := rabbitmq.NewPublisher(rabbitmq.Options{URL: cfg.AMQP.URL, Exchange: cfg.AMQP.Exchange, AppID: cfg.OTel.ServiceName})
			defer publisher.Close()
			auditor := telemetry.NewAuditEmitter(publisher, cfg.AMQP.AuditRoutingKey, cfg.OTel.ServiceName, cfg.Environment)

			accounts := services.NewAccountService(repositories.NewStore(database), auditor)
			if err := accounts.DeleteAccount(c.Context, userID); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "account %s deleted\n", userID)
			return nil
		},
	}
}

func seedRulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-rules",
		Usage: "Upsert moderation rules from a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Moderation rules YAML `FILE`",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			rules, err := moderation.LoadRulesFile(c.String("file"))
			if err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			database, err := db.Connect(c.Context, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := repositories.NewBannedWordRepo(database)
			for _, rule := range rules {
				if err := repo.Upsert(c.Context, rule); err != nil {
					return fmt.Errorf("upsert rule %q: %w", rule.Pattern, err)
				}
			}
			fmt.Fprintf(c.App.Writer, "%d rules seeded\n", len(rules))
			return nil
		},
	}
}
