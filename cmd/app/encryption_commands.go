package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credvault/cmd/app/commands"
	"github.com/allisson/credvault/internal/app"
	"github.com/allisson/credvault/internal/config"
)

func getEncryptionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-encryption-key",
			Usage: "Generate a new credential encryption key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Wrap the key with this KMS key (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateEncryptionKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cfg.EncryptionKeyEnv,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "check-encryption",
			Usage: "Check that the credential encryption key is configured",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				cipher, err := container.Cipher()
				if err != nil {
					return err
				}

				return commands.RunCheckEncryption(
					cipher,
					commands.DefaultIO().Writer,
					cfg.EncryptionKeyEnv,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "encrypt-credentials",
			Usage: "Encrypt a username/password pair and print the envelope as JSON",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Username to encrypt",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Password to encrypt (omit to read it from stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				cipher, err := container.Cipher()
				if err != nil {
					return err
				}

				return commands.RunEncryptCredentials(
					cipher,
					commands.DefaultIO(),
					cmd.String("username"),
					cmd.String("password"),
				)
			},
		},
		{
			Name:  "decrypt-credentials",
			Usage: "Decrypt an envelope and print the username/password pair as JSON",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "envelope",
					Aliases: []string{"e"},
					Usage:   "Envelope JSON {iv, ciphertext, tag} (omit to read it from stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				cipher, err := container.Cipher()
				if err != nil {
					return err
				}

				return commands.RunDecryptCredentials(cipher, commands.DefaultIO(), cmd.String("envelope"))
			},
		},
	}
}
