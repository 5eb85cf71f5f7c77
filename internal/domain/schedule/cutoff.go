package schedule

import "time"

// CutOffRule is the per-weekday lead-time rule: bookings for that weekday
// must lie more than LeadHours past the moment of the request.
type CutOffRule struct {
	Weekday   time.Weekday
	LeadHours int
	Enabled   bool
}

// CutoffPolicy evaluates lead-time rules. A weekday with no rule, a disabled
// rule, or a zero lead permits unconditionally.
type CutoffPolicy struct {
	rules map[time.Weekday]CutOffRule
}

func NewCutoffPolicy(rules []CutOffRule) *CutoffPolicy {
	m := make(map[time.Weekday]CutOffRule, len(rules))
	for _, r := range rules {
		m[r.Weekday] = r
	}
	return &CutoffPolicy{rules: m}
}

// Allows reports whether a booking at target may still be placed at now.
func (p *CutoffPolicy) Allows(now, target time.Time) bool {
	r, ok := p.rules[target.Weekday()]
	if !ok || !r.Enabled || r.LeadHours <= 0 {
		return true
	}
	cutoff := now.Add(time.Duration(r.LeadHours) * time.Hour)
	return target.After(cutoff)
}
