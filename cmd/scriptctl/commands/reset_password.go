package commands

import (
	"fmt"

	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/service"
	"scriptaffiliator/pkg/jwt"

	"github.com/spf13/cobra"
)

var (
	resetEmail    string
	resetPassword string
)

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password for a user",
	Long: `Set a new password for the user with the given email. Existing sessions
stay valid until they expire or the user logs out.

Examples:
  scriptctl reset-password --email admin@example.com --password s3cret!`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, zlog, cfg, err := connect()
		if err != nil {
			return err
		}

		auth := service.NewAuthService(
			repository.NewUserRepo(db),
			jwt.NewManager(cfg.Session.Secret, cfg.Session.TTL),
			nil, nil, zlog,
		)
		if err := auth.ResetPassword(resetEmail, resetPassword); err != nil {
			return fmt.Errorf("reset password for %s: %w", resetEmail, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Password for %s has been reset\n", resetEmail)
		return nil
	},
}

func init() {
	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "User email")
	resetPasswordCmd.Flags().StringVar(&resetPassword, "password", "", "New password (min 6 characters)")
	_ = resetPasswordCmd.MarkFlagRequired("email")
	_ = resetPasswordCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(resetPasswordCmd)
}
