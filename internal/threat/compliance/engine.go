// Package compliance checks security events against regulation rule sets
// compiled to CEL programs.
package compliance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"riskgate/internal/threat/models"
)

type compiledRule struct {
	Rule
	program cel.Program
}

type Engine struct {
	rules  []compiledRule
	logger *slog.Logger
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("event_type", cel.StringType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("user_id", cel.StringType),
		cel.Variable("ip_address", cel.StringType),
		cel.Variable("country", cel.StringType),
		cel.Variable("hour", cel.IntType),
		cel.Variable("malicious_ip", cel.BoolType),
		cel.Variable("classification", cel.StringType),
		cel.Variable("evidence", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("eu_countries", cel.ListType(cel.StringType)),
	)
}

// NewEngine compiles every rule up front; a rule that does not compile to a
// bool expression fails construction.
func NewEngine(rules []Rule, opts ...Option) (*Engine, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	e := &Engine{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(e)
	}
	for _, r := range rules {
		ast, iss := env.Compile(r.Expression)
		if iss.Err() != nil {
			return nil, fmt.Errorf("compile rule %s: %w", r.ID, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %s must return bool, got %s", r.ID, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %s: %w", r.ID, err)
		}
		e.rules = append(e.rules, compiledRule{Rule: r, program: prg})
	}
	return e, nil
}

// Evaluate returns violations in rule order. Never nil. A rule that errors
// at evaluation is logged and treated as not violated.
func (e *Engine) Evaluate(ctx context.Context, event models.SecurityEvent, enr models.Enrichment) []models.ComplianceViolation {
	activation := activationFor(event, enr)
	out := []models.ComplianceViolation{}
	for _, r := range e.rules {
		val, _, err := r.program.ContextEval(ctx, activation)
		if err != nil {
			e.logger.WarnContext(ctx, "compliance rule failed",
				"rule", r.ID,
				"event_id", event.ID,
				"error", err,
			)
			continue
		}
		if violated, ok := val.(types.Bool); ok && bool(violated) {
			out = append(out, models.ComplianceViolation{
				Regulation:  r.Regulation,
				Rule:        r.ID,
				Severity:    r.Severity,
				Description: r.Description,
			})
		}
	}
	return out
}

func activationFor(event models.SecurityEvent, enr models.Enrichment) map[string]any {
	evidence := event.Evidence
	if evidence == nil {
		evidence = map[string]string{}
	}
	country := ""
	switch {
	case enr.Location != nil:
		country = enr.Location.Country
	case event.Location != nil:
		country = event.Location.Country
	}
	return map[string]any{
		"event_type":     string(event.Type),
		"severity":       string(event.Severity),
		"user_id":        event.UserID,
		"ip_address":     event.IPAddress,
		"country":        strings.ToUpper(country),
		"hour":           int64(event.Timestamp.UTC().Hour()),
		"malicious_ip":   enr.Reputation.Malicious,
		"classification": strings.ToLower(evidence["data_classification"]),
		"evidence":       evidence,
		"eu_countries":   euCountries,
	}
}
