package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	"FullName":                   "Full name",
	"RollNumber":                 "Roll number",
	"BatchYear":                  "Batch year",
	"CGPA":                       "CGPA",
	"MinCGPA":                    "Minimum CGPA",
	"PackageLPA":                 "Package (LPA)",
	"JobType":                    "Job type",
	"EligibleDepartments":        "Eligible departments",
	"ContactEmail":               "Contact email",
	"DriveDate":                  "Drive date",
	"RegistrationDeadline":       "Registration deadline",
	"MaxApplicationsPerStudent":  "Max applications per student",
	"NotificationRetentionDays":  "Notification retention days",
	"AllowPlacedStudentsToApply": "Allow placed students to apply",
	"AttendanceDate":             "Attendance date",
	"CoverLetter":                "Cover letter",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min", "gte":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max", "lte":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, spaces and common punctuation", label)
	case "valid_phone":
		return fmt.Sprintf("%s must be 7-15 digits with an optional leading +", label)
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or symbols", label)
	case "roll_number":
		return fmt.Sprintf("%s must be 3-24 letters, digits, / or -", label)
	case "batch_year":
		return fmt.Sprintf("%s is outside the accepted range", label)
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", label, getFieldLabel(param))
	case "ltfield", "ltefield":
		return fmt.Sprintf("%s must be before %s", label, getFieldLabel(param))
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
