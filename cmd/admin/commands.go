package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"grievancedesk/backend/internal/api/handler"
	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/dashboard"
	"grievancedesk/backend/internal/models"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// adminStore is the staff-side surface of *storage.Service.
type adminStore interface {
	ListGrievanceReports(ctx context.Context, userID string) ([]models.GrievanceReport, error)
	ListSuspiciousReports(ctx context.Context, userID string) ([]models.SuspiciousReport, error)
	UpdateGrievanceStatus(ctx context.Context, id string, status models.GrievanceStatus) (*models.GrievanceReport, error)
	UpdateSuspiciousStatus(ctx context.Context, id string, status models.SuspiciousStatus) (*models.SuspiciousReport, error)
	DeleteGrievanceReport(ctx context.Context, id string) error
	DeleteSuspiciousReport(ctx context.Context, id string) error
}

type app struct {
	cfg     *config.Config
	out     io.Writer
	connect func(ctx context.Context, cfg *config.Config) (adminStore, func(), error)
}

const (
	kindGrievance  = "grievance"
	kindSuspicious = "suspicious"
)

var errUnknownKind = errors.New(`kind must be "grievance" or "suspicious"`)

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "admin",
		Short:        "Staff tools for grievance and suspicious entity reports",
		SilenceUsage: true,
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.out)

	rootCmd.AddCommand(a.listCmd())
	rootCmd.AddCommand(a.setStatusCmd())
	rootCmd.AddCommand(a.deleteCmd())
	rootCmd.AddCommand(a.issueTokenCmd())
	return rootCmd
}

// withStore connects, runs fn and releases the connections.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s adminStore) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, cleanup, err := a.connect(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, s)
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [user_id]",
		Short: "List every report of a user, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			return a.withStore(cmd, func(ctx context.Context, s adminStore) error {
				grievances, err := s.ListGrievanceReports(ctx, userID)
				if err != nil {
					return fmt.Errorf("list grievances: %w", err)
				}
				suspicious, err := s.ListSuspiciousReports(ctx, userID)
				if err != nil {
					return fmt.Errorf("list suspicious reports: %w", err)
				}

				items := dashboard.Merge(grievances, suspicious)
				if len(items) == 0 {
					fmt.Fprintf(a.out, "No reports for user %s\n", userID)
					return nil
				}

				w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tTITLE\tSUBMITTED")
				for _, item := range items {
					d := item.Display()
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Kind, colorStatus(d.Badge), d.Title, d.Submitted)
				}
				return w.Flush()
			})
		},
	}
}

func (a *app) setStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status [grievance|suspicious] [id] [status]",
		Short: "Change the status of a report and notify its owner",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, raw := args[0], args[1], args[2]
			return a.withStore(cmd, func(ctx context.Context, s adminStore) error {
				switch kind {
				case kindGrievance:
					status, err := models.ParseGrievanceStatus(raw)
					if err != nil {
						return err
					}
					if _, err := s.UpdateGrievanceStatus(ctx, id, status); err != nil {
						return fmt.Errorf("update grievance %s: %w", id, err)
					}
				case kindSuspicious:
					status, err := models.ParseSuspiciousStatus(raw)
					if err != nil {
						return err
					}
					if _, err := s.UpdateSuspiciousStatus(ctx, id, status); err != nil {
						return fmt.Errorf("update suspicious report %s: %w", id, err)
					}
				default:
					return errUnknownKind
				}

				fmt.Fprintf(a.out, "%s %s %s is now %s\n", color.GreenString("✓"), kind, id,
					colorStatus(dashboard.StatusBadge(raw)))
				return nil
			})
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [grievance|suspicious] [id]",
		Short: "Delete a report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id := args[0], args[1]
			return a.withStore(cmd, func(ctx context.Context, s adminStore) error {
				var err error
				switch kind {
				case kindGrievance:
					err = s.DeleteGrievanceReport(ctx, id)
				case kindSuspicious:
					err = s.DeleteSuspiciousReport(ctx, id)
				default:
					return errUnknownKind
				}
				if err != nil {
					return fmt.Errorf("delete %s %s: %w", kind, id, err)
				}
				fmt.Fprintf(a.out, "%s deleted %s %s\n", color.GreenString("✓"), kind, id)
				return nil
			})
		},
	}
}

func (a *app) issueTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue-token [user_id]",
		Short: "Issue an API bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("user id %q is not a uuid: %w", args[0], err)
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl <= 0 {
				ttl = a.cfg.JWTTTL
			}
			auth := handler.NewAuthenticator(a.cfg.JWTSecret, a.cfg.JWTIssuer, ttl)
			token, err := auth.GenerateToken(userID.String())
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
	cmd.Flags().Duration("ttl", 0, "token lifetime (defaults to JWT_TTL)")
	return cmd
}

func colorStatus(b dashboard.Badge) string {
	switch b.Variant {
	case dashboard.VariantDestructive:
		return color.RedString(b.Label)
	case dashboard.VariantDefault:
		if b.Icon == dashboard.IconCheckCircle {
			return color.GreenString(b.Label)
		}
		return color.YellowString(b.Label)
	default:
		return color.CyanString(b.Label)
	}
}
