package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dosada05/clubhub/db"
	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
	"github.com/Dosada05/clubhub/services"
)

var promoteRole string

// Тренеров нельзя создать через регистрацию, роль выдаёт оператор.
var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Set the role of an existing account (coach by default)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromote,
}

func init() {
	promoteCmd.Flags().StringVar(&promoteRole, "role", string(models.RoleCoach), "role to grant: coach, parent, player or alumni")
	rootCmd.AddCommand(promoteCmd)
}

func runPromote(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cmd.Context(), cfg.DatabaseURL, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := docstore.NewPostgresStore(conn)
	userService := services.NewUserService(
		store,
		repositories.NewUserRepository(store),
		repositories.NewPlayerRepository(store),
		repositories.NewCredentialsRepository(store),
		logger,
	)

	user, err := userService.SetRole(cmd.Context(), args[0], models.Role(promoteRole))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.FullName(), user.Email, user.Role)
	return nil
}
