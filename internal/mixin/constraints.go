package mixin

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/diagnostic"
)

// ErrInvalidConstraint is returned for malformed constraint expressions.
var ErrInvalidConstraint = errors.New("invalid constraint")

var constraintPattern = regexp.MustCompile(`^([A-Z0-9\-_.]+)(?:\(([^)]*)\))?$`)

// Constraint restricts a token to the inclusive range [Min, Max].
type Constraint struct {
	Token string
	Min   int
	Max   int
	Expr  string
}

// ParseConstraints parses a comma or semicolon separated list of
// TOKEN(range) entries. Ranges are "n", "n-m", "n+", "n-", "<n", ">n",
// "<=n" and ">=n". A bare TOKEN only requires the token to be defined.
func ParseConstraints(expr string) ([]Constraint, error) {
	var out []Constraint

	for _, part := range strings.FieldsFunc(expr, func(r rune) bool { return r == ',' || r == ';' }) {
		part = strings.ToUpper(strings.Join(strings.Fields(part), ""))
		if part == "" {
			continue
		}

		m := constraintPattern.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidConstraint, part)
		}

		c := Constraint{Token: m[1], Min: math.MinInt, Max: math.MaxInt, Expr: part}
		if err := c.parseRange(m[2]); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidConstraint, part, err)
		}

		out = append(out, c)
	}

	return out, nil
}

func (c *Constraint) parseRange(r string) error {
	var err error

	switch {
	case r == "":
	case strings.HasPrefix(r, "<="):
		c.Max, err = strconv.Atoi(r[2:])
	case strings.HasPrefix(r, ">="):
		c.Min, err = strconv.Atoi(r[2:])
	case strings.HasPrefix(r, "<"):
		if c.Max, err = strconv.Atoi(r[1:]); err == nil {
			if c.Max == math.MinInt {
				return errors.New("empty range")
			}

			c.Max--
		}
	case strings.HasPrefix(r, ">"):
		if c.Min, err = strconv.Atoi(r[1:]); err == nil {
			if c.Min == math.MaxInt {
				return errors.New("empty range")
			}

			c.Min++
		}
	case strings.HasSuffix(r, "+"):
		c.Min, err = strconv.Atoi(r[:len(r)-1])
	case strings.HasSuffix(r, "-"):
		c.Max, err = strconv.Atoi(r[:len(r)-1])
	case strings.Contains(r, "-"):
		lo, hi, _ := strings.Cut(r, "-")
		if c.Min, err = strconv.Atoi(lo); err == nil {
			c.Max, err = strconv.Atoi(hi)
		}

		if err == nil && c.Min > c.Max {
			err = errors.New("empty range")
		}
	default:
		c.Min, err = strconv.Atoi(r)
		c.Max = c.Min
	}

	return err
}

// Check reports whether value satisfies the constraint.
func (c Constraint) Check(value int) bool {
	return value >= c.Min && value <= c.Max
}

// checkConstraints validates the "constraints" attribute of ann against the
// host's tokens. Unknown tokens and malformed expressions are warnings,
// violations are errors.
func checkConstraints(host Host, member *analyze.Member, ann *analyze.Annotation) {
	expr := ann.String("constraints", "")
	if expr == "" {
		return
	}

	loc := member.Location(ann.SimpleName())

	constraints, err := ParseConstraints(expr)
	if err != nil {
		host.PrintMessage(diagnostic.Diagnostic{
			Severity: diagnostic.SeverityWarning,
			Code:     diagnostic.CodeConstraintInvalid,
			Message:  err.Error(),
			Location: loc,
		})

		return
	}

	for _, c := range constraints {
		value, ok := host.Token(c.Token)
		if !ok {
			host.PrintMessage(diagnostic.Diagnostic{
				Severity: diagnostic.SeverityWarning,
				Code:     diagnostic.CodeConstraintInvalid,
				Message:  fmt.Sprintf("Token '%s' could not be resolved", c.Token),
				Location: loc,
			})

			continue
		}

		if !c.Check(value) {
			host.PrintMessage(diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Code:     diagnostic.CodeConstraintViolation,
				Message:  fmt.Sprintf("Constraint violation: %s, %s=%d", c.Expr, c.Token, value),
				Location: loc,
			})
		}
	}
}
