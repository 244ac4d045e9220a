package graphql

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tournevent/ratebridge/pkg/shipper"
)

const pickupDateLayout = "2006-01-02"

// Argument values arrive already coerced against the schema, so required
// fields are present and enums hold valid names.

func rateRequestFromInput(v any) (*shipper.RateRequest, error) {
	input, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.New("missing or invalid 'input' argument")
	}

	req := &shipper.RateRequest{
		Origin:      addressFromInput(input["origin"]),
		Destination: addressFromInput(input["destination"]),
		Packages:    packagesFromInput(input["packages"]),
	}
	req.ServiceLevel, _ = input["serviceLevel"].(string)

	if raw, ok := input["pickupDate"].(string); ok && raw != "" {
		date, err := time.Parse(pickupDateLayout, raw)
		if err != nil {
			return nil, shipper.NewValidationError("", "Invalid rate request", []shipper.Violation{
				{Path: "input.pickupDate", Reason: "must be a date in YYYY-MM-DD format"},
			})
		}
		req.PickupDate = &date
	}
	return req, nil
}

func addressFromInput(v any) shipper.Address {
	data, ok := v.(map[string]interface{})
	if !ok {
		return shipper.Address{}
	}
	addr := shipper.Address{}
	addr.Name, _ = data["name"].(string)
	addr.Street1, _ = data["street1"].(string)
	addr.Street2, _ = data["street2"].(string)
	addr.City, _ = data["city"].(string)
	addr.StateProvince, _ = data["stateProvince"].(string)
	addr.PostalCode, _ = data["postalCode"].(string)
	addr.CountryCode, _ = data["countryCode"].(string)
	addr.IsResidential, _ = data["isResidential"].(bool)
	return addr
}

func packagesFromInput(v any) []shipper.Package {
	items, _ := v.([]interface{})
	packages := make([]shipper.Package, 0, len(items))
	for _, item := range items {
		data, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		weightUnit, _ := data["weightUnit"].(string)
		dimensionUnit, _ := data["dimensionUnit"].(string)
		packages = append(packages, shipper.Package{
			Weight: shipper.Weight{
				Value: toFloat(data["weight"]),
				Unit:  shipper.WeightUnit(weightUnit),
			},
			Dimensions: shipper.Dimensions{
				Length: toFloat(data["length"]),
				Width:  toFloat(data["width"]),
				Height: toFloat(data["height"]),
				Unit:   shipper.DimensionUnit(dimensionUnit),
			},
		})
	}
	return packages
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

func stringList(v any) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func quoteToGraphQL(q shipper.RateQuote) map[string]any {
	out := map[string]any{
		"__typename":  "RateQuote",
		"carrier":     q.Carrier,
		"service":     q.Service,
		"serviceCode": q.ServiceCode,
		"totalCost": map[string]any{
			"__typename": "Money",
			"amount":     q.TotalCost.Amount,
			"currency":   q.TotalCost.Currency,
		},
		"transitDays":    nil,
		"deliveryDate":   nil,
		"deliveryByTime": nil,
		"alerts":         nil,
	}
	if q.TransitDays != nil {
		out["transitDays"] = *q.TransitDays
	}
	if q.DeliveryDate != "" {
		out["deliveryDate"] = q.DeliveryDate
	}
	if byTime, ok := q.Meta["deliveryByTime"].(string); ok {
		out["deliveryByTime"] = byTime
	}
	if alerts, ok := q.Meta["alerts"].([]string); ok {
		out["alerts"] = alerts
	}
	return out
}

func failureToGraphQL(carrier string, err error) map[string]any {
	out := map[string]any{
		"__typename": "CarrierFailure",
		"carrier":    carrier,
		"code":       shipper.ErrorCode(err),
		"message":    err.Error(),
		"retryable":  shipper.IsRetryable(err),
		"retryAfter": nil,
		"violations": nil,
	}

	var rlErr *shipper.RateLimitError
	if errors.As(err, &rlErr) && rlErr.RetryAfter != "" {
		out["retryAfter"] = int(rlErr.RetryAfterDuration().Seconds())
	}
	var vErr *shipper.ValidationError
	if errors.As(err, &vErr) {
		out["violations"] = violationsToGraphQL(vErr.Violations)
	}
	return out
}

func violationsToGraphQL(vs []shipper.Violation) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = map[string]any{
			"__typename": "Violation",
			"path":       v.Path,
			"reason":     v.Reason,
		}
	}
	return out
}
