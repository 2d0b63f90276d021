package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

var (
	userRoles    = []string{"driver", "owner", "guard"}
	parkingTypes = []string{"covered", "open"}
	vehicleTypes = []string{"car", "bike", "truck"}
)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func registerCustomValidations() {
	validate.RegisterValidation("user_role", oneOf(userRoles))
	validate.RegisterValidation("parking_type", oneOf(parkingTypes))
	validate.RegisterValidation("vehicle_type", oneOf(vehicleTypes))
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, fe := range verrs {
		field := fieldPath(fe)
		switch fe.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + fe.Param()
		case "gte":
			errors[field] = "Value must be at least " + fe.Param()
		case "lte":
			errors[field] = "Value must be at most " + fe.Param()
		case "gtfield":
			errors[field] = "Value must be greater than " + fe.Param()
		case "user_role":
			errors[field] = "Invalid role. Must be: " + strings.Join(userRoles, ", ")
		case "parking_type":
			errors[field] = "Invalid parking type. Must be: " + strings.Join(parkingTypes, " or ")
		case "vehicle_type":
			errors[field] = "Invalid vehicle type. Must be: " + strings.Join(vehicleTypes, ", ")
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// fieldPath drops the struct name prefix: "CreateSpotRequest.vehicle_types[0]" -> "vehicle_types[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

// IsVehicleType reports whether v is a supported vehicle type.
func IsVehicleType(v string) bool {
	for _, t := range vehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}
