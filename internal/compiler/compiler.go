package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/pkg/condition"
)

// Compiler compiles rules into validators, cached by rule identity.
// Compilation is idempotent: a cache hit skips re-parsing, and
// concurrent first compilations of the same identity collapse to a
// single parse via singleflight. Entries are evicted only by explicit
// Invalidate; rule deletion drives that through the rules domain.
type Compiler struct {
	mu     sync.RWMutex
	cache  map[string]*Validator
	group  singleflight.Group
	logger *slog.Logger
}

// New creates an empty Compiler.
func New(logger *slog.Logger) *Compiler {
	return &Compiler{
		cache:  make(map[string]*Validator),
		logger: logger.With("system", "compiler"),
	}
}

// Compile returns the validator for a rule, compiling on first use.
// An unparsable condition yields a *CompilationError scoped to this
// rule. A cached validator whose condition no longer matches the
// requesting rule yields ErrCacheConsistency: stale compiled code is
// never served.
func (c *Compiler) Compile(rule rules.Rule) (*Validator, error) {
	c.mu.RLock()
	cached, ok := c.cache[rule.ID]
	c.mu.RUnlock()

	if ok {
		return c.verify(cached, rule)
	}

	v, err, _ := c.group.Do(rule.ID, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.cache[rule.ID]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		compiled, err := c.build(rule)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[rule.ID] = compiled
		c.mu.Unlock()

		c.logger.Debug("validator compiled", "rule_id", rule.ID, "field", compiled.Field)
		return compiled, nil
	})
	if err != nil {
		return nil, err
	}

	return c.verify(v.(*Validator), rule)
}

// Compiled pairs a rule with its compilation outcome within a batch.
type Compiled struct {
	Rule      rules.Rule
	Validator *Validator
	Err       error
}

// CompileAll compiles every rule, isolating failures: one bad condition
// produces an error entry for that rule only, siblings still compile.
// Output order matches input order.
func (c *Compiler) CompileAll(items []rules.Rule) []Compiled {
	out := make([]Compiled, len(items))
	for i, rule := range items {
		v, err := c.Compile(rule)
		out[i] = Compiled{Rule: rule, Validator: v, Err: err}
	}
	return out
}

// Invalidate removes a rule's cached validator. Implements
// rules.Invalidator.
func (c *Compiler) Invalidate(ruleID string) {
	c.mu.Lock()
	delete(c.cache, ruleID)
	c.mu.Unlock()

	c.logger.Debug("validator invalidated", "rule_id", ruleID)
}

// Size reports the number of cached validators.
func (c *Compiler) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Compiler) build(rule rules.Rule) (*Validator, error) {
	node, err := condition.Parse(rule.Condition)
	if err != nil {
		var pe *condition.ParseError
		ce := &CompilationError{RuleID: rule.ID, RuleName: rule.Name, Reason: err.Error()}
		if errors.As(err, &pe) {
			ce.Fragment = pe.Fragment
			ce.Reason = pe.Reason
		}
		return nil, ce
	}

	fields := condition.Fields(node)
	field := ""
	if len(fields) > 0 {
		field = fields[0]
	}

	name := funcName(rule.Name)
	return &Validator{
		RuleID:       rule.ID,
		RuleName:     rule.Name,
		Field:        field,
		ErrorMessage: rule.ErrorMessage,
		Source:       condition.Render(node, name, field, rule.ErrorMessage),
		node:         node,
		condition:    node.String(),
	}, nil
}

func (c *Compiler) verify(v *Validator, rule rules.Rule) (*Validator, error) {
	if v.condition != rule.Condition || v.RuleID != rule.ID {
		return nil, fmt.Errorf(
			"%w: rule %s condition %q, cached %q",
			ErrCacheConsistency, rule.ID, rule.Condition, v.condition,
		)
	}
	return v, nil
}
