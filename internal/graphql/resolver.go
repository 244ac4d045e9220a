// Package graphql serves the rate query API. Queries are parsed and
// validated against the embedded schema with gqlparser and executed by a
// small field resolver.
package graphql

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tournevent/ratebridge/internal/telemetry"
	"github.com/tournevent/ratebridge/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"
)

//go:embed schema.graphql
var schemaSDL string

var schema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Response is a GraphQL result.
type Response struct {
	Data   map[string]any `json:"data"`
	Errors gqlerror.List  `json:"errors,omitempty"`
}

// Resolver is the root resolver for the GraphQL schema.
// It holds dependencies needed by all resolvers.
type Resolver struct {
	Registry *shipper.Registry
	Logger   *otelzap.Logger
	Metrics  *telemetry.Metrics
	Now      func() time.Time
}

// NewResolver creates a new resolver with the given dependencies.
func NewResolver(registry *shipper.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics) *Resolver {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if metrics == nil {
		metrics = telemetry.NewMetrics(prometheus.NewRegistry())
	}
	return &Resolver{
		Registry: registry,
		Logger:   logger,
		Metrics:  metrics,
		Now:      time.Now,
	}
}

// Execute parses, validates and runs a query operation. Parse and
// validation failures produce a response without data.
func (r *Resolver) Execute(ctx context.Context, req Request) *Response {
	doc, errs := gqlparser.LoadQuery(schema, req.Query)
	if len(errs) > 0 {
		return &Response{Errors: errs}
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		if req.OperationName == "" {
			return &Response{Errors: gqlerror.List{gqlerror.Errorf("operationName is required when the document has several operations")}}
		}
		return &Response{Errors: gqlerror.List{gqlerror.Errorf("operation %q not found", req.OperationName)}}
	}
	if op.Operation != ast.Query {
		return &Response{Errors: gqlerror.List{gqlerror.Errorf("%s operations are not supported", op.Operation)}}
	}

	vars, err := validator.VariableValues(schema, op, req.Variables)
	if err != nil {
		return &Response{Errors: gqlerror.List{toGQLError(err)}}
	}

	resp := &Response{Data: make(map[string]any)}
	for _, field := range collectFields(op.SelectionSet, vars) {
		value, err := r.resolveQueryField(ctx, field, vars)
		if err != nil {
			gqlErr := toGQLError(err)
			gqlErr.Path = ast.Path{ast.PathName(field.Alias)}
			resp.Errors = append(resp.Errors, gqlErr)
			resp.Data[field.Alias] = nil
			continue
		}
		resp.Data[field.Alias] = project(field.SelectionSet, value, vars)
	}
	return resp
}

func (r *Resolver) resolveQueryField(ctx context.Context, field *ast.Field, vars map[string]interface{}) (any, error) {
	switch field.Name {
	case "__typename":
		return "Query", nil
	case "health":
		return "ok", nil
	case "carriers":
		return r.Registry.Names(), nil
	case "rates":
		return r.rates(ctx, field.ArgumentMap(vars))
	}
	return nil, gqlerror.Errorf("field %q is not supported", field.Name)
}

func (r *Resolver) rates(ctx context.Context, args map[string]interface{}) (map[string]any, error) {
	req, err := rateRequestFromInput(args["input"])
	if err != nil {
		return nil, err
	}

	results, err := r.Registry.GetRatesFromCarriers(ctx, req, stringList(args["carriers"]))
	if err != nil {
		return nil, err
	}

	quotes := make([]any, 0)
	failures := make([]any, 0)
	for _, res := range results {
		elapsed := res.Duration.Seconds()
		if res.Err != nil {
			r.Metrics.RecordRequest("getRates", res.Carrier, "error", elapsed)
			r.Metrics.RecordError(res.Carrier, shipper.ErrorCode(res.Err))
			failures = append(failures, failureToGraphQL(res.Carrier, res.Err))
			continue
		}
		r.Metrics.RecordRequest("getRates", res.Carrier, "success", elapsed)
		r.Metrics.RecordQuotes(res.Carrier, len(res.Response.Quotes))
		for _, q := range res.Response.Quotes {
			quotes = append(quotes, quoteToGraphQL(q))
		}
	}

	r.Logger.Ctx(ctx).Info("Rates resolved",
		zap.Int("carriers", len(results)),
		zap.Int("quotes", len(quotes)),
		zap.Int("failures", len(failures)),
	)

	return map[string]any{
		"__typename": "RatesResult",
		"quotes":     quotes,
		"errors":     failures,
		"timestamp":  r.Now().UTC().Format(time.RFC3339),
	}, nil
}

// collectFields flattens fragments and drops fields excluded by @skip or
// @include.
func collectFields(set ast.SelectionSet, vars map[string]interface{}) []*ast.Field {
	var fields []*ast.Field
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if included(s.Directives, vars) {
				fields = append(fields, s)
			}
		case *ast.InlineFragment:
			if included(s.Directives, vars) {
				fields = append(fields, collectFields(s.SelectionSet, vars)...)
			}
		case *ast.FragmentSpread:
			if s.Definition != nil && included(s.Directives, vars) {
				fields = append(fields, collectFields(s.Definition.SelectionSet, vars)...)
			}
		}
	}
	return fields
}

func included(directives ast.DirectiveList, vars map[string]interface{}) bool {
	if d := directives.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(vars)["if"].(bool); skip {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if include, _ := d.ArgumentMap(vars)["if"].(bool); !include {
			return false
		}
	}
	return true
}

// project keeps only the selected fields of resolved objects.
func project(set ast.SelectionSet, value any, vars map[string]interface{}) any {
	if len(set) == 0 {
		return value
	}
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any)
		for _, f := range collectFields(set, vars) {
			out[f.Alias] = project(f.SelectionSet, v[f.Name], vars)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = project(set, item, vars)
		}
		return out
	}
	return value
}

func toGQLError(err error) *gqlerror.Error {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}

	out := &gqlerror.Error{Message: err.Error()}
	var vErr *shipper.ValidationError
	switch {
	case errors.As(err, &vErr):
		out.Extensions = map[string]interface{}{
			"code":       vErr.Code,
			"violations": vErr.Violations,
		}
	case errors.Is(err, shipper.ErrCarrierNotFound):
		out.Extensions = map[string]interface{}{"code": "CARRIER_NOT_FOUND"}
	default:
		out.Extensions = map[string]interface{}{"code": shipper.ErrorCode(err)}
	}
	return out
}
