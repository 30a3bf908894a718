package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mfakit/pkg/redis"
	"github.com/dmitrymomot/mfakit/pkg/replay"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

type runner func(fn func(cmd *cobra.Command, cfg totp.Config, args []string) error) func(*cobra.Command, []string) error

func newSecretCmd(run runner) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a new Base32 secret",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, cfg totp.Config, _ []string) error {
			if size == 0 {
				size = cfg.SecretSize
			}
			secret, err := totp.GenerateSecretSize(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret.Base32())
			return nil
		}),
	}
	cmd.Flags().IntVar(&size, "size", 0, "secret length in bytes (default TOTP_SECRET_SIZE)")
	return cmd
}

func newCodeCmd(run runner) *cobra.Command {
	var at int64
	cmd := &cobra.Command{
		Use:   "code SECRET",
		Short: "Print the current code for a secret",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, cfg totp.Config, args []string) error {
			secret, err := totp.ParseSecret(totp.NormalizeSecret(args[0]))
			if err != nil {
				return err
			}
			clock := totp.NewClock(totp.WithStep(cfg.Period))
			now := clock.Now()
			if cmd.Flags().Changed("at") {
				now = time.Unix(at, 0)
			}
			code, err := totp.ComputeCode(secret, clock.CounterAt(now), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%ds left)\n", code, clock.RemainingSecondsFor(now.Unix()))
			return nil
		}),
	}
	cmd.Flags().Int64Var(&at, "at", 0, "unix time to compute the code for")
	return cmd
}

func newVerifyCmd(run runner) *cobra.Command {
	var redisURL, subject string
	cmd := &cobra.Command{
		Use:   "verify SECRET CODE",
		Short: "Check a code against a secret",
		Long: "Check a code against a secret within the tolerance window.\n" +
			"With --redis-url the accepted step is recorded so the same code is refused next time.",
		Args: cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, cfg totp.Config, args []string) error {
			v := totp.NewValidator(cfg)
			counter, err := v.Verify(totp.NormalizeSecret(args[0]), strings.TrimSpace(args[1]), v.Clock().Now())
			if err != nil {
				return err
			}
			if redisURL != "" {
				if err := checkReplay(cmd.Context(), cfg, redisURL, subject, counter); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid (step %d)\n", counter)
			return nil
		}),
	}
	cmd.Flags().StringVar(&redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL for replay protection")
	cmd.Flags().StringVar(&subject, "subject", "totpctl", "replay subject, e.g. the account name")
	return cmd
}

func checkReplay(ctx context.Context, cfg totp.Config, redisURL, subject string, counter uint64) error {
	var rcfg redis.Config
	if err := env.Parse(&rcfg); err != nil {
		return err
	}
	rcfg.ConnectionURL = redisURL

	client, err := redis.Connect(ctx, rcfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ttl := replay.TTLFor(time.Duration(cfg.Period)*time.Second, cfg.ToleranceSteps)
	guard := replay.NewGuard(replay.NewRedisStore(client), ttl)
	return guard.Check(ctx, subject, counter)
}

func newURICmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "uri LABEL SECRET",
		Short: "Print the otpauth:// provisioning URI",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, cfg totp.Config, args []string) error {
			uri, err := totp.BuildURI(totp.ParamsFromConfig(cfg, args[0], totp.NormalizeSecret(args[1])))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		}),
	}
}

func newQRCmd(run runner) *cobra.Command {
	var width, height int
	var output string
	cmd := &cobra.Command{
		Use:   "qr LABEL SECRET",
		Short: "Write the provisioning QR code as PNG",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, cfg totp.Config, args []string) error {
			if width == 0 {
				width = cfg.QRSize
			}
			if height == 0 {
				height = cfg.QRSize
			}
			uri, err := totp.BuildURI(totp.ParamsFromConfig(cfg, args[0], totp.NormalizeSecret(args[1])))
			if err != nil {
				return err
			}
			png, err := totp.RenderQR(uri, width, height)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(png)
				return err
			}
			return os.WriteFile(output, png, 0o600)
		}),
	}
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels (default TOTP_QR_SIZE)")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels (default TOTP_QR_SIZE)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	return cmd
}

func newKeygenCmd(run runner) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a base64 AES-256 key for TOTP_ENCRYPTION_KEY",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, cfg totp.Config, _ []string) error {
			if check {
				if _, err := totp.GetEncryptionKey(cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "TOTP_ENCRYPTION_KEY ok")
				return nil
			}
			key, err := totp.GenerateEncodedEncryptionKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&check, "check", false, "validate the configured TOTP_ENCRYPTION_KEY instead")
	return cmd
}
