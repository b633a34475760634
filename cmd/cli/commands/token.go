package commands

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
	"github.com/spf13/cobra"
)

// TokenCmd creates the token command. It signs access tokens with the API's
// secret so the endpoints can be exercised without the identity provider.
func TokenCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <user_id>",
		Short: "Issue an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")
			employeeID, _ := cmd.Flags().GetString("employee")

			p := user.Principal{UserID: args[0], EmployeeID: employeeID, Role: user.Role(role)}
			if !validator.IsValidUUID(p.UserID) {
				return user.ErrUserIDRequired
			}
			if p.EmployeeID != "" && !validator.IsValidUUID(p.EmployeeID) {
				return user.ErrEmployeeIDRequired
			}
			if !user.IsValidRole(p.Role) {
				return user.ErrInvalidRole
			}

			token, expiresAt, err := jwt.NewJWTService(app.Cfg.JWT.Secret, app.Cfg.JWT.AccessExpiration).GenerateAccessToken(p)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Println(token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringP("role", "r", string(user.RoleEmployee), "Role claim (owner, manager, employee, pending)")
	cmd.Flags().String("employee", "", "Employee ID claim")

	return cmd
}
