package waf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type policyKind int

const (
	policyUnset policyKind = iota
	policyLowestFree
	policyNext
	policyFixed
)

// PriorityPolicy decides which priority an assembled rule gets. The zero
// value means "use the assembler's default for that rule".
type PriorityPolicy struct {
	kind  policyKind
	fixed int
}

// PriorityLowestFree picks the smallest positive priority not yet in use.
func PriorityLowestFree() PriorityPolicy { return PriorityPolicy{kind: policyLowestFree} }

// PriorityNext picks one past the highest priority in use.
func PriorityNext() PriorityPolicy { return PriorityPolicy{kind: policyNext} }

// PriorityFixed pins the rule at n. Allocation fails if n is taken.
func PriorityFixed(n int) PriorityPolicy { return PriorityPolicy{kind: policyFixed, fixed: n} }

func (p PriorityPolicy) IsZero() bool { return p.kind == policyUnset }

func (p PriorityPolicy) or(fallback PriorityPolicy) PriorityPolicy {
	if p.IsZero() {
		return fallback
	}
	return p
}

func (p PriorityPolicy) String() string {
	switch p.kind {
	case policyLowestFree:
		return "lowest-free"
	case policyNext:
		return "next"
	case policyFixed:
		return "fixed:" + strconv.Itoa(p.fixed)
	default:
		return ""
	}
}

// ParsePriorityPolicy accepts "lowest-free", "next", "fixed:N" or a bare
// integer N (same as "fixed:N"). The empty string yields the zero policy.
func ParsePriorityPolicy(s string) (PriorityPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return PriorityPolicy{}, nil
	case "lowest-free", "lowest":
		return PriorityLowestFree(), nil
	case "next", "next-sequential":
		return PriorityNext(), nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "fixed:"))
	if err != nil {
		return PriorityPolicy{}, fmt.Errorf("invalid priority policy %q", s)
	}
	if n <= 0 {
		return PriorityPolicy{}, fmt.Errorf("invalid priority policy %q: %w", s, ErrInvalidPriority)
	}
	return PriorityFixed(n), nil
}

// UnmarshalText lets env and file decoders fill a PriorityPolicy directly.
func (p *PriorityPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParsePriorityPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p PriorityPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Allocate returns the priority this policy assigns given the rules already
// in rs.
func (p PriorityPolicy) Allocate(rs RuleSet) (int, error) {
	switch p.kind {
	case policyLowestFree:
		return LowestFreePriority(rs), nil
	case policyNext:
		return NextPriority(rs), nil
	case policyFixed:
		if p.fixed <= 0 {
			return 0, ErrInvalidPriority
		}
		if owner, taken := lo.Find(rs, func(r Rule) bool { return r.Priority == p.fixed }); taken {
			return 0, fmt.Errorf("%w: %d is already used by %q", ErrDuplicatePriority, p.fixed, owner.Name)
		}
		return p.fixed, nil
	default:
		return 0, fmt.Errorf("priority policy not set")
	}
}

// NextPriority returns one past the highest priority in rs, or 1 for an
// empty set. It never hands out a value at or below one already used.
func NextPriority(rs RuleSet) int {
	if len(rs) == 0 {
		return 1
	}
	return lo.Max(rs.Priorities()) + 1
}

// LowestFreePriority returns the smallest positive priority unused in rs.
func LowestFreePriority(rs RuleSet) int {
	used := lo.SliceToMap(rs, func(r Rule) (int, struct{}) { return r.Priority, struct{}{} })
	for p := 1; ; p++ {
		if _, ok := used[p]; !ok {
			return p
		}
	}
}
