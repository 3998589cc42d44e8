// Package compliance turns raw attendance figures into pass/fail verdicts.
// Thresholds live here, outside the metrics engine.
package compliance

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
)

var ErrInvalidPolicy = errors.New("invalid compliance policy")

// Threshold pairs the team requirement with the stricter travel requirement.
type Threshold struct {
	Team   float64 `yaml:"team" json:"team"`
	Travel float64 `yaml:"travel" json:"travel"`
}

type Policy struct {
	RegularPercentage Threshold `yaml:"regular_percentage" json:"regular_percentage"`
	OutreachHours     Threshold `yaml:"outreach_hours" json:"outreach_hours"`
}

func DefaultPolicy() Policy {
	return Policy{
		RegularPercentage: Threshold{Team: 60, Travel: 75},
		OutreachHours:     Threshold{Team: 12, Travel: 18},
	}
}

// LoadPolicy reads a YAML policy file. Missing keys keep their defaults; an
// empty path returns DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read compliance policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse compliance policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

func (p Policy) Validate() error {
	r := p.RegularPercentage
	if r.Team < 0 || r.Travel > 100 || r.Team > r.Travel {
		return fmt.Errorf("%w: regular_percentage must satisfy 0 <= team <= travel <= 100", ErrInvalidPolicy)
	}
	o := p.OutreachHours
	if o.Team < 0 || o.Team > o.Travel {
		return fmt.Errorf("%w: outreach_hours must satisfy 0 <= team <= travel", ErrInvalidPolicy)
	}
	return nil
}

type Verdict struct {
	RegularApplicable      bool `json:"regular_applicable"`
	MeetsTeamRegular       bool `json:"meets_team_regular"`
	MeetsTravelRegular     bool `json:"meets_travel_regular"`
	MeetsTeamOutreach      bool `json:"meets_team_outreach"`
	MeetsTravelOutreach    bool `json:"meets_travel_outreach"`
	MeetsTeamRequirement   bool `json:"meets_team_requirement"`
	MeetsTravelRequirement bool `json:"meets_travel_requirement"`
}

// Evaluate compares m against the policy. A not-applicable regular percentage
// (every window excused) imposes no regular requirement.
func (p Policy) Evaluate(m metrics.UserMetrics) Verdict {
	v := Verdict{RegularApplicable: m.RegularPercentage.IsApplicable()}

	if pct, ok := m.RegularPercentage.Get(); ok {
		v.MeetsTeamRegular = pct >= p.RegularPercentage.Team
		v.MeetsTravelRegular = pct >= p.RegularPercentage.Travel
	} else {
		v.MeetsTeamRegular = true
		v.MeetsTravelRegular = true
	}

	outreach := m.OutreachAttended.Hours()
	v.MeetsTeamOutreach = outreach >= p.OutreachHours.Team
	v.MeetsTravelOutreach = outreach >= p.OutreachHours.Travel

	v.MeetsTeamRequirement = v.MeetsTeamRegular && v.MeetsTeamOutreach
	v.MeetsTravelRequirement = v.MeetsTravelRegular && v.MeetsTravelOutreach
	return v
}
