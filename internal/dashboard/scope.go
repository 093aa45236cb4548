package dashboard

import (
	"strings"

	appErrors "github.com/unclebandit/attestation-tracker/internal/errors"
	"github.com/unclebandit/attestation-tracker/internal/model"
)

// Scope restricts records to what caller may see. teamOnly narrows a
// manager's view to their direct reports and is ignored for other roles.
func Scope(records []model.AttestationRecord, caller model.Caller, teamOnly bool) ([]model.AttestationRecord, error) {
	switch caller.Role {
	case model.RoleAdmin, model.RoleCoordinator:
		return records, nil
	case model.RoleManager:
		if !teamOnly {
			return records, nil
		}
		out := make([]model.AttestationRecord, 0, len(records))
		for _, r := range records {
			if r.ManagerEmail != "" && strings.EqualFold(r.ManagerEmail, caller.Email) {
				out = append(out, r)
			}
		}
		return out, nil
	}
	return nil, appErrors.ErrRoleNotPermitted
}
