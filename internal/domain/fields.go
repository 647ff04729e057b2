package domain

import "strings"

// ProfileField names a free-text principal field its owner may change.
type ProfileField string

const (
	FieldFullName     ProfileField = "name"
	FieldDateOfBirth  ProfileField = "dob"
	FieldPhone        ProfileField = "phone"
	FieldEmail        ProfileField = "email"
	FieldProgram      ProfileField = "program"
	FieldAcademicYear ProfileField = "year"
	FieldAddress      ProfileField = "address"
	FieldGuardianName ProfileField = "guardian"
)

// ProfileFields lists updatable fields in display order.
var ProfileFields = []ProfileField{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldProgram,
	FieldAcademicYear,
	FieldDateOfBirth,
	FieldAddress,
	FieldGuardianName,
}

// Label is the human-readable name of the field.
func (f ProfileField) Label() string {
	switch f {
	case FieldFullName:
		return "Full Name"
	case FieldDateOfBirth:
		return "Date of Birth"
	case FieldPhone:
		return "Phone Number"
	case FieldEmail:
		return "Email Address"
	case FieldProgram:
		return "Program/Branch"
	case FieldAcademicYear:
		return "Academic Year"
	case FieldAddress:
		return "Address"
	case FieldGuardianName:
		return "Guardian/Parent Name"
	default:
		return string(f)
	}
}

// ParseProfileField resolves a field name, case-insensitively.
func ParseProfileField(raw string) (ProfileField, error) {
	candidate := ProfileField(strings.ToLower(strings.TrimSpace(raw)))
	for _, f := range ProfileFields {
		if f == candidate {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

// Value returns the current value of the field on p.
func (p Principal) Value(f ProfileField) (string, error) {
	switch f {
	case FieldFullName:
		return p.FullName, nil
	case FieldDateOfBirth:
		return p.DateOfBirth, nil
	case FieldPhone:
		return p.Phone, nil
	case FieldEmail:
		return p.Email, nil
	case FieldProgram:
		return p.Program, nil
	case FieldAcademicYear:
		return p.AcademicYear, nil
	case FieldAddress:
		return p.Address, nil
	case FieldGuardianName:
		return p.GuardianName, nil
	default:
		return "", ErrUnknownField
	}
}

// Set assigns value to the field on p.
func (p *Principal) Set(f ProfileField, value string) error {
	switch f {
	case FieldFullName:
		p.FullName = value
	case FieldDateOfBirth:
		p.DateOfBirth = value
	case FieldPhone:
		p.Phone = value
	case FieldEmail:
		p.Email = value
	case FieldProgram:
		p.Program = value
	case FieldAcademicYear:
		p.AcademicYear = value
	case FieldAddress:
		p.Address = value
	case FieldGuardianName:
		p.GuardianName = value
	default:
		return ErrUnknownField
	}
	return nil
}
