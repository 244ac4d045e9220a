package ups

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/tournevent/ratebridge/pkg/shipper"
)

// Payloads from UPS are checked in two phases: a structural pass that
// decodes and validates, producing a violation list, then a pure
// normalization pass that fills defaults and turns the single-or-list
// RatedShipment into a list.

// ParseTokenResponse validates a token endpoint body.
func ParseTokenResponse(body []byte) (*TokenResponse, []shipper.Violation) {
	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, decodeViolations("", err)
	}
	if vs := shipper.Violations(tr.Validate()); len(vs) > 0 {
		return nil, vs
	}
	return &tr, nil
}

// Validate implements validation.Validatable.
func (t TokenResponse) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.AccessToken, validation.Required),
		validation.Field(&t.ExpiresIn, validation.Required, intString),
		validation.Field(&t.TokenType, validation.Required),
	)
}

// ExpiresInSeconds returns the validated lifetime in seconds.
func (t TokenResponse) ExpiresInSeconds() int64 {
	n, _ := strconv.ParseInt(t.ExpiresIn, 10, 64)
	return n
}

type rawRateEnvelope struct {
	RateResponse *rawRateResponse `json:"RateResponse"`
}

type rawRateResponse struct {
	Response      *ResponseInfo   `json:"Response"`
	RatedShipment json.RawMessage `json:"RatedShipment"`
}

// ParseRateResponse validates a Shop response body and normalizes it.
func ParseRateResponse(body []byte) (*RateResponseEnvelope, []shipper.Violation) {
	info, shipments, vs := validateRateResponse(body)
	if len(vs) > 0 {
		return nil, vs
	}
	return normalizeRateResponse(info, shipments), nil
}

func validateRateResponse(body []byte) (ResponseInfo, []RatedShipment, []shipper.Violation) {
	var env rawRateEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ResponseInfo{}, nil, decodeViolations("", err)
	}
	if env.RateResponse == nil {
		return ResponseInfo{}, nil, []shipper.Violation{{Path: "RateResponse", Reason: "is required"}}
	}

	var violations []shipper.Violation
	var info ResponseInfo
	if env.RateResponse.Response == nil {
		violations = append(violations, shipper.Violation{Path: "RateResponse.Response", Reason: "is required"})
	} else {
		info = *env.RateResponse.Response
		violations = append(violations,
			shipper.PrefixViolations("RateResponse.Response", shipper.Violations(info.Validate()))...)
	}

	shipments, vs := decodeRatedShipments("RateResponse.RatedShipment", env.RateResponse.RatedShipment)
	violations = append(violations, vs...)
	return info, shipments, violations
}

// decodeRatedShipments accepts either a single object or an array.
func decodeRatedShipments(path string, raw json.RawMessage) ([]RatedShipment, []shipper.Violation) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, []shipper.Violation{{Path: path, Reason: "is required"}}
	}

	switch trimmed[0] {
	case '{':
		var one RatedShipment
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, decodeViolations(path, err)
		}
		if vs := shipper.Violations(one.Validate()); len(vs) > 0 {
			return nil, shipper.PrefixViolations(path, vs)
		}
		return []RatedShipment{one}, nil

	case '[':
		var many []RatedShipment
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, decodeViolations(path, err)
		}
		var violations []shipper.Violation
		for i, s := range many {
			vs := shipper.Violations(s.Validate())
			violations = append(violations, shipper.PrefixViolations(fmt.Sprintf("%s.%d", path, i), vs)...)
		}
		if len(violations) > 0 {
			return nil, violations
		}
		return many, nil
	}

	return nil, []shipper.Violation{{Path: path, Reason: "must be an object or an array"}}
}

func normalizeRateResponse(info ResponseInfo, shipments []RatedShipment) *RateResponseEnvelope {
	out := make([]RatedShipment, len(shipments))
	for i, s := range shipments {
		if strings.TrimSpace(s.Service.Description) == "" {
			s.Service.Description = fallbackServiceName
		}
		out[i] = s
	}
	return &RateResponseEnvelope{
		RateResponse: WireRateResponse{
			Response:      info,
			RatedShipment: out,
		},
	}
}

// Validate implements validation.Validatable.
func (r ResponseInfo) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ResponseStatus, validation.Required),
		validation.Field(&r.Alert),
	)
}

// Validate implements validation.Validatable.
func (c CodeDescription) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Code, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (s RatedShipment) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Service),
		validation.Field(&s.RatedShipmentAlert),
		validation.Field(&s.TotalCharges),
		validation.Field(&s.GuaranteedDelivery),
	)
}

// Validate implements validation.Validatable.
func (c Charges) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CurrencyCode, validation.Required),
		validation.Field(&c.MonetaryValue, validation.Required, decimalString),
	)
}

// Validate implements validation.Validatable.
func (g GuaranteedDelivery) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.BusinessDaysInTransit, intString),
	)
}

var (
	intString = validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 32); err != nil || n < 0 {
			return errors.New("must be a non-negative integer string")
		}
		return nil
	})

	decimalString = validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return errors.New("must be a decimal string")
		}
		return nil
	})
)

func decodeViolations(prefix string, err error) []shipper.Violation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []shipper.Violation{{
			Path:   shipper.JoinPath(prefix, typeErr.Field),
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []shipper.Violation{{
			Path:   prefix,
			Reason: fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, syntaxErr),
		}}
	}
	return []shipper.Violation{{Path: prefix, Reason: err.Error()}}
}
