package payments

import "strings"

type NameParts struct {
	FirstName string
	LastName  string
}

// ResolveName prefers explicit first/last fields; legacy orders only carry a
// composite display name, which falls through to the split policy.
func ResolveName(firstName, lastName, display string) NameParts {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName != "" && lastName != "" {
		return NameParts{FirstName: firstName, LastName: lastName}
	}
	if display == "" {
		display = strings.TrimSpace(firstName + " " + lastName)
	}
	return SplitDisplayName(display)
}

// SplitDisplayName splits a composite name on whitespace: the last token is
// the surname, the remainder the given name.
func SplitDisplayName(name string) NameParts {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return NameParts{FirstName: "Guest", LastName: "User"}
	case 1:
		return NameParts{FirstName: fields[0], LastName: "Customer"}
	default:
		return NameParts{
			FirstName: strings.Join(fields[:len(fields)-1], " "),
			LastName:  fields[len(fields)-1],
		}
	}
}
