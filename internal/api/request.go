package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud-drive/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a JSON body into dst and runs its `validate` tags.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.Wrap(apperror.KindInvalidArgument, "Invalid request body", err)
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			if fe.Tag() == "required" {
				return apperror.Wrap(apperror.KindInvalidArgument, "Missing fields", err)
			}
			return apperror.Wrap(apperror.KindInvalidArgument, fmt.Sprintf("Invalid %s", strings.ToLower(fe.Field())), err)
		}
		return apperror.Wrap(apperror.KindInvalidArgument, "Invalid request body", err)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
