package shared

import (
	apperrors "social-campaign-backend/internal/errors"
)

// CheckFields rejects any set field that is not in allowed.
func CheckFields(set, allowed []string) error {
	permitted := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		permitted[f] = struct{}{}
	}
	rejected := map[string]string{}
	for _, f := range set {
		if _, ok := permitted[f]; !ok {
			rejected[f] = "not updatable"
		}
	}
	if len(rejected) > 0 {
		return apperrors.NewValidation("update touches fields that may not be changed", rejected)
	}
	return nil
}
