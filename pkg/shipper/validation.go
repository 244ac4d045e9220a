package shipper

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Violation is one path-addressed schema failure.
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Reason
	}
	return v.Path + ": " + v.Reason
}

// Validate implements validation.Validatable.
func (a Address) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required.Error("name is required")),
		validation.Field(&a.Street1, validation.Required.Error("street1 is required")),
		validation.Field(&a.City, validation.Required.Error("city is required")),
		validation.Field(&a.StateProvince, validation.Required.Error("state/province is required")),
		validation.Field(&a.PostalCode, validation.Required.Error("postal code is required")),
		validation.Field(&a.CountryCode,
			validation.Required.Error("country code must be 2 characters (ISO 3166-1 alpha-2)"),
			validation.RuneLength(2, 2).Error("country code must be 2 characters (ISO 3166-1 alpha-2)"),
		),
	)
}

// Validate implements validation.Validatable.
func (w Weight) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Value, positive("weight must be positive")...),
		validation.Field(&w.Unit,
			validation.Required.Error("weight unit is required"),
			validation.In(WeightLBS, WeightKGS).Error("weight unit must be LBS or KGS"),
		),
	)
}

// Validate implements validation.Validatable.
func (d Dimensions) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Length, positive("length must be positive")...),
		validation.Field(&d.Width, positive("width must be positive")...),
		validation.Field(&d.Height, positive("height must be positive")...),
		validation.Field(&d.Unit,
			validation.Required.Error("dimension unit is required"),
			validation.In(DimensionIN, DimensionCM).Error("dimension unit must be IN or CM"),
		),
	)
}

// Validate implements validation.Validatable.
func (p Package) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Weight),
		validation.Field(&p.Dimensions),
	)
}

// Validate implements validation.Validatable.
func (r RateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Origin),
		validation.Field(&r.Destination),
		validation.Field(&r.Packages,
			validation.Required.Error("at least one package is required"),
		),
	)
}

// ValidateRateRequest checks req against the rate request shape.
// A nil or empty result means the request is usable.
func ValidateRateRequest(req *RateRequest) []Violation {
	if req == nil {
		return []Violation{{Reason: "rate request is required"}}
	}
	return Violations(req.Validate())
}

// Violations flattens an ozzo-validation error tree into path-addressed
// violations sorted by path. Non-validation errors become a single root
// violation.
func Violations(err error) []Violation {
	if err == nil {
		return nil
	}
	var out []Violation
	flattenViolations("", err, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// PrefixViolations rebases violations under prefix.
func PrefixViolations(prefix string, vs []Violation) []Violation {
	out := make([]Violation, len(vs))
	for i, v := range vs {
		out[i] = Violation{Path: JoinPath(prefix, v.Path), Reason: v.Reason}
	}
	return out
}

// JoinPath joins non-empty path segments with dots.
func JoinPath(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

func flattenViolations(prefix string, err error, out *[]Violation) {
	if errs, ok := err.(validation.Errors); ok {
		for key, e := range errs {
			if e == nil {
				continue
			}
			flattenViolations(JoinPath(prefix, key), e, out)
		}
		return
	}
	*out = append(*out, Violation{Path: prefix, Reason: err.Error()})
}

func positive(msg string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(msg),
		validation.Min(0.0).Exclusive().Error(msg),
	}
}
