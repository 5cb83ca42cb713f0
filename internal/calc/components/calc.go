package components

import (
	"fmt"

	"Structura/internal/calc/field"
	"Structura/internal/logger"

	"github.com/google/cel-go/cel"
)

const (
	legacyKey        = "roof"
	legacyBeamDepth  = 400.0
	computedVariable = "computed"
)

// Input maps a component key (slab, column, ...) to its raw field record.
type Input map[string]field.Record

// Result maps a component display name to its verdict.
type Result map[string]string

// Dimensions holds one component's fields after defaulting.
type Dimensions map[string]float64

// Params is Input after normalization: every table component is present and
// every field is a plain number (absent fields are 0).
type Params map[string]Dimensions

// Normalize applies field defaults and rewrites the legacy roof record into a
// beam record when the beam span was not supplied.
func Normalize(in Input) Params {
	records := make(Input, len(in))
	for k, v := range in {
		records[k] = v
	}
	records["beam"] = legacyBeam(in)

	p := make(Params, len(table))
	for _, rule := range table {
		rec := records[rule.Key]
		dims := make(Dimensions, len(rule.Fields))
		for _, name := range rule.Fields {
			dims[name] = rec.Get(name).Or(0)
		}
		p[rule.Key] = dims
	}
	return p
}

// legacyBeam maps the older roof form (pitch carried the span, depth
// defaulted to 400mm) onto the beam record.
func legacyBeam(in Input) field.Record {
	beam := in["beam"]
	if beam.Get("span").Set {
		return beam
	}
	roof, ok := in[legacyKey]
	if !ok {
		return beam
	}
	depth := roof.Get("depth")
	if !depth.Set {
		depth = field.Num(legacyBeamDepth)
	}
	return field.Record{"span": roof.Get("pitch"), "depth": depth}
}

type compiledRule struct {
	rule     Rule
	computed cel.Program
	fails    cel.Program
}

// Evaluator runs a compiled rule table. It is immutable after construction
// and safe for concurrent use.
type Evaluator struct {
	rules []compiledRule
}

func NewEvaluator(rules []Rule) (*Evaluator, error) {
	env, err := newEnv(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ev := &Evaluator{rules: make([]compiledRule, 0, len(rules))}
	for _, rule := range rules {
		computed, err := compile(env, rule.Computed, cel.DoubleType)
		if err != nil {
			return nil, fmt.Errorf("rule %s computed: %w", rule.Key, err)
		}
		fails, err := compile(env, rule.Fails, cel.BoolType)
		if err != nil {
			return nil, fmt.Errorf("rule %s fails: %w", rule.Key, err)
		}
		ev.rules = append(ev.rules, compiledRule{rule: rule, computed: computed, fails: fails})
	}
	return ev, nil
}

func newEnv(rules []Rule) (*cel.Env, error) {
	seen := map[string]bool{computedVariable: true}
	opts := []cel.EnvOption{cel.Variable(computedVariable, cel.DoubleType)}
	for _, rule := range rules {
		for _, name := range rule.Fields {
			if seen[name] {
				continue
			}
			seen[name] = true
			opts = append(opts, cel.Variable(name, cel.DoubleType))
		}
	}
	return cel.NewEnv(opts...)
}

func compile(env *cel.Env, expr string, want *cel.Type) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(want) {
		return nil, fmt.Errorf("expression %q yields %s, want %s", expr, ast.OutputType(), want)
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}
	return prog, nil
}

// Evaluate produces one verdict per component whose two fields are both
// strictly positive. Other components are left out of the result.
func (e *Evaluator) Evaluate(p Params) Result {
	out := Result{}
	for _, cr := range e.rules {
		dims := p[cr.rule.Key]
		a, b := dims[cr.rule.Fields[0]], dims[cr.rule.Fields[1]]
		if !(a > 0 && b > 0) {
			continue
		}
		verdict, err := cr.verdict(a, b)
		if err != nil {
			logger.Error("component rule evaluation failed", "rule", cr.rule.Key, "error", err)
			continue
		}
		out[cr.rule.Name] = verdict
	}
	return out
}

func (cr compiledRule) verdict(a, b float64) (string, error) {
	vars := map[string]any{
		cr.rule.Fields[0]: a,
		cr.rule.Fields[1]: b,
	}
	val, _, err := cr.computed.Eval(vars)
	if err != nil {
		return "", err
	}
	computed, ok := val.Value().(float64)
	if !ok {
		return "", fmt.Errorf("computed value is %T", val.Value())
	}

	vars[computedVariable] = computed
	val, _, err = cr.fails.Eval(vars)
	if err != nil {
		return "", err
	}
	failed, ok := val.Value().(bool)
	if !ok {
		return "", fmt.Errorf("fails value is %T", val.Value())
	}

	if failed {
		return cr.rule.Warning(Values{A: a, B: b, Computed: computed}), nil
	}
	return cr.rule.Safe, nil
}

var defaultEvaluator = mustEvaluator(table)

func mustEvaluator(rules []Rule) *Evaluator {
	ev, err := NewEvaluator(rules)
	if err != nil {
		panic(err)
	}
	return ev
}

func Evaluate(in Input) Result {
	return defaultEvaluator.Evaluate(Normalize(in))
}
