package plan

import (
	"go/token"

	"errgen/internal/analyze"
	"errgen/internal/common"
	"errgen/internal/diagnostic"
	"errgen/internal/directive"
)

// Origin is the configuration level an effective option was taken from.
type Origin int

const (
	OriginBuiltin  Origin = iota // no level set the option
	OriginDefaults               // project defaults
	OriginRoot                   // errgen:error
	OriginVariant                // errgen:variant
)

// String returns a human-readable representation of the Origin.
func (o Origin) String() string {
	switch o {
	case OriginBuiltin:
		return "builtin"
	case OriginDefaults:
		return "defaults"
	case OriginRoot:
		return "root"
	case OriginVariant:
		return "variant"
	default:
		return common.UnknownStr
	}
}

// Effective is the configuration of a variant after fallback.
type Effective struct {
	// Desc is nil when no level sets a description.
	Desc       *string
	DescOrigin Origin

	Format       directive.Format
	FormatOrigin Origin
	// FormatPos is the position of the directive the format came from.
	FormatPos token.Pos
}

// ResolvedField is a field with its resolved verb.
type ResolvedField struct {
	Name  string
	Field *analyze.Field
	// Verb formats the field inside Error messages.
	Verb string
	// DebugVerb formats the field inside the debug form.
	DebugVerb string
}

// ResolvedVariant holds everything the generator needs for one variant.
type ResolvedVariant struct {
	Variant   *analyze.Variant
	Effective Effective
	Fields    []ResolvedField
	// Message is returned by Error.
	Message Message
	// Debug is printed for %+v.
	Debug Message
	// Source is the field returned by Unwrap, or nil.
	Source *ResolvedField
}

// ResolvedSubject is a subject with resolved variants.
type ResolvedSubject struct {
	Subject  *analyze.Subject
	Variants []ResolvedVariant
}

// ResolvedPackage is a package with resolved subjects.
type ResolvedPackage struct {
	Package  *analyze.Package
	Subjects []ResolvedSubject
}

// Plan is the resolved form of every loaded package.
type Plan struct {
	Packages    []ResolvedPackage
	Diagnostics diagnostic.Diagnostics
}
