// Command totpctl generates and checks TOTP secrets and codes from the shell.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

func main() {
	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "totpctl"), logger.WithOutput(os.Stderr))

	cfg, err := totp.LoadConfig()
	if err != nil {
		log.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	root := newRootCmd(cfg, log)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg totp.Config, log *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "totpctl",
		Short:         "TOTP secret, code and provisioning tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.Issuer, "issuer", cfg.Issuer, "issuer shown in authenticator apps")
	root.PersistentFlags().IntVar(&cfg.Digits, "digits", cfg.Digits, "code length (6-8)")
	root.PersistentFlags().UintVar(&cfg.Period, "period", cfg.Period, "time step in seconds")
	root.PersistentFlags().UintVar(&cfg.ToleranceSteps, "tolerance", cfg.ToleranceSteps, "accepted steps on each side of now")
	root.PersistentFlags().StringVar((*string)(&cfg.Algorithm), "algorithm", string(cfg.Algorithm), "HMAC hash: SHA1, SHA256 or SHA512")

	// flags are bound to cfg, so validate once they are parsed
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Algorithm.UnmarshalText([]byte(cfg.Algorithm)); err != nil {
			return err
		}
		return cfg.Validate()
	}

	run := func(fn func(cmd *cobra.Command, cfg totp.Config, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := fn(cmd, cfg, args); err != nil {
				log.ErrorContext(cmd.Context(), "command failed", logger.Operation(cmd.Name()), logger.Error(err))
				return err
			}
			return nil
		}
	}

	root.AddCommand(
		newSecretCmd(run),
		newCodeCmd(run),
		newVerifyCmd(run),
		newURICmd(run),
		newQRCmd(run),
		newKeygenCmd(run),
	)
	return root
}
