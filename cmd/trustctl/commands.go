package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/payamancoders/trustcheck/internal/bootstrap"
	"github.com/payamancoders/trustcheck/internal/config"
	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/jwt"
	"github.com/payamancoders/trustcheck/internal/repository"
)

func tokenCommand() *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
		secret string
		issuer string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id and role",
		Long:  "Issue an HS256 bearer token signed with JWT_SECRET, for local testing and support sessions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
			}
			if issuer == "" {
				issuer = os.Getenv("JWT_ISSUER")
			}
			tokens, err := jwt.NewGenerator(secret, issuer, ttl)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(domain.Identity{UserID: userID, Role: domain.Role(strings.ToLower(role))})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User id placed in the sub claim")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleEmployer), "Role: employer, admin, job_seeker or mentor")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Issuer claim (defaults to JWT_ISSUER)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the employers schema to DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := bootstrap.ApplySchema(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func employerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employer",
		Short: "Inspect and seed employer accounts",
	}
	cmd.AddCommand(employerUpsertCommand(), employerShowCommand())
	return cmd
}

func employerUpsertCommand() *cobra.Command {
	var employer domain.Employer

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create or update an employer profile without touching its verification record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if employer.ID <= 0 || strings.TrimSpace(employer.Email) == "" {
				return fmt.Errorf("--id and --email are required")
			}
			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			saved, err := repository.NewPostgresEmployerRepo(pool).Save(cmd.Context(), employer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "employer %d saved (status=%s, version=%d)\n", saved.ID, saved.Verification.Status, saved.Version)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&employer.ID, "id", 0, "Employer account id")
	flags.StringVar(&employer.Name, "name", "", "Account holder name")
	flags.StringVar(&employer.Email, "email", "", "Account email")
	flags.StringVar(&employer.CompanyName, "company", "", "Company name")
	flags.StringVar(&employer.Website, "website", "", "Company website")
	flags.StringVar(&employer.Description, "description", "", "Company description")
	flags.StringVar(&employer.Industry, "industry", "", "Industry")
	flags.IntVar(&employer.FoundedYear, "founded", 0, "Founded year")
	flags.StringVar(&employer.Location, "location", "", "Location")

	return cmd
}

func employerShowCommand() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print an employer's verification status",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			e, err := repository.NewPostgresEmployerRepo(pool).GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			v := e.Verification
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "employer:     %d %s <%s>\n", e.ID, e.CompanyName, e.Email)
			fmt.Fprintf(out, "status:       %s\n", v.Status)
			fmt.Fprintf(out, "trust score:  %d\n", v.TrustScore)
			fmt.Fprintf(out, "reports:      %d\n", v.Reports)
			fmt.Fprintf(out, "open flags:   %d of %d\n", v.OpenFlags(), len(v.Flags))
			fmt.Fprintf(out, "can post:     %t\n", v.CanPostJobs())
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Employer account id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
