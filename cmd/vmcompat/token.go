package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vme-analyzer.io/analyzer/internal/api/middleware"
)

// signingKeyEnv matches the server's security.jwt_signing_key setting.
const signingKeyEnv = "SECURITY_JWT_SIGNING_KEY"

type tokenOptions struct {
	subject    string
	role       string
	issuer     string
	ttl        time.Duration
	signingKey string
}

func newTokenCmd() *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin API",
		Long: `Token signs an admin API token with the server's signing key, read from
--signing-key or the ` + signingKeyEnv + ` environment variable.

Roles:
  viewer - read the matrix and guidance
  editor - read and change the matrix and guidance
  admin  - everything, including the log level endpoint`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, expires, err := mintToken(*opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.subject, "subject", "", "token subject, for audit logs (required)")
	cmd.Flags().StringVar(&opts.role, "role", middleware.RoleViewer, "viewer, editor or admin")
	cmd.Flags().StringVar(&opts.issuer, "issuer", "vme-analyzer", "issuer the server expects")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 8*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&opts.signingKey, "signing-key", "", "HMAC signing key (default $"+signingKeyEnv+")")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func mintToken(opts tokenOptions) (string, time.Time, error) {
	key := opts.signingKey
	if key == "" {
		key = os.Getenv(signingKeyEnv)
	}
	if key == "" {
		return "", time.Time{}, fmt.Errorf("no signing key: set --signing-key or %s", signingKeyEnv)
	}
	if opts.ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("ttl must be positive")
	}

	perms, ok := middleware.RolePermissions(opts.role)
	if !ok {
		return "", time.Time{}, fmt.Errorf("unknown role %q", opts.role)
	}

	return middleware.GenerateToken(middleware.JWTConfig{
		SigningKey: []byte(key),
		Issuer:     strings.TrimSpace(opts.issuer),
		ExpiresIn:  opts.ttl,
	}, opts.subject, []string{opts.role}, perms)
}
