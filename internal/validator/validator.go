package validator

import (
	"reflect"
	"strings"

	"carpool/internal/clock"
	"carpool/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validateHHMM validates a 24-hour "HH:MM" time of day
func validateHHMM(fl validator.FieldLevel) bool {
	return clock.ValidHHMM(fl.Field().String())
}

// validateVehicleType validates that a string names a known vehicle type
func validateVehicleType(fl validator.FieldLevel) bool {
	return models.VehicleType(fl.Field().String()).Valid()
}

// fieldName reports fields by their JSON or form name so error messages
// match what the client sent.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

// Register adds the custom validations to v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		return err
	}
	return v.RegisterValidation("vehicletype", validateVehicleType)
}

// RegisterCustomValidators registers all custom validators with gin's validator
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = Register(v)
	}
}
