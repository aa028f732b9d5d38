package instance

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/augeps/internal/ir"
)

// NumObjectives is n_z for every instance.
const NumObjectives = 7

// ObjectiveNames labels z1..z7.
var ObjectiveNames = [NumObjectives]string{
	"workload_fairness",
	"subject_coverage",
	"suitability",
	"non_consecutive",
	"timeslot_preference",
	"committee_days",
	"room_changes",
}

// Size fixes the dimensions of an instance.
type Size struct {
	Name       string `yaml:"name"`
	Members    int    `yaml:"members"`
	Defences   int    `yaml:"defences"`
	Days       int    `yaml:"days"`
	Slots      int    `yaml:"slots"`
	Rooms      int    `yaml:"rooms"`
	Roles      int    `yaml:"roles"`
	Subjects   int    `yaml:"subjects"`
	D          int    `yaml:"d"`
	Candidates int    `yaml:"candidates"`
}

// Validate checks that every dimension is usable.
func (s Size) Validate() error {
	checks := []struct {
		name string
		v    int
	}{
		{"members", s.Members},
		{"defences", s.Defences},
		{"days", s.Days},
		{"slots", s.Slots},
		{"rooms", s.Rooms},
		{"roles", s.Roles},
		{"subjects", s.Subjects},
		{"d", s.D},
		{"candidates", s.Candidates},
	}
	for _, c := range checks {
		if c.v <= 0 {
			return fmt.Errorf("size %s must be > 0 (got %d)", c.name, c.v)
		}
	}
	if s.Roles > s.Members {
		return fmt.Errorf("size roles (%d) exceeds members (%d)", s.Roles, s.Members)
	}
	return nil
}

// Knobs are the data-generation parameters varied across experiment tables.
type Knobs struct {
	// FixedRoles is the number of roles whose eligible members are drawn per
	// defence (e_ijt).
	FixedRoles int `yaml:"fixed_roles"`

	// PLik0 is p(lik = 0), one of 0.78, 0.82, 0.86.
	PLik0 float64 `yaml:"p_lik0"`

	// PMkp0 is p(mkp = 0), one of 0.8, 0.86.
	PMkp0 float64 `yaml:"p_mkp0"`

	// PV21 and PH21 are p(v = [2,1]) and p(h = [2,1]).
	PV21 float64 `yaml:"p_v21"`
	PH21 float64 `yaml:"p_h21"`

	RiqPerMember  int `yaml:"riq_per_member"`
	TiqPerDefence int `yaml:"tiq_per_defence"`
}

// Validate checks the knobs against a size.
func (k Knobs) Validate(s Size) error {
	if k.FixedRoles < 0 || k.FixedRoles > s.Roles {
		return fmt.Errorf("knobs fixed_roles must be in 0..%d (got %d)", s.Roles, k.FixedRoles)
	}
	if _, err := likDiagonal(k.PLik0); err != nil {
		return err
	}
	if _, err := mkpDiagonal(k.PMkp0); err != nil {
		return err
	}
	for name, p := range map[string]float64{"p_v21": k.PV21, "p_h21": k.PH21} {
		if p < 0 || p > 1 {
			return fmt.Errorf("knobs %s must be in [0, 1] (got %g)", name, p)
		}
	}
	if k.RiqPerMember <= 0 || k.RiqPerMember > s.Subjects {
		return fmt.Errorf("knobs riq_per_member must be in 1..%d (got %d)", s.Subjects, k.RiqPerMember)
	}
	if k.TiqPerDefence <= 0 || k.TiqPerDefence > s.Subjects {
		return fmt.Errorf("knobs tiq_per_defence must be in 1..%d (got %d)", s.Subjects, k.TiqPerDefence)
	}
	return nil
}

// Member is one committee member.
type Member struct {
	// Weight is u_i (7 or 3).
	Weight int `yaml:"weight"`

	// Subjects are the member's expertise subjects, 0-based.
	Subjects []int `yaml:"subjects,flow"`

	// V and H are the summed consecutiveness and room-change patterns,
	// 1 for [1] and 3 for [2,1].
	V int `yaml:"v"`
	H int `yaml:"h"`
}

// Defence is one defence to schedule.
type Defence struct {
	Subjects []int `yaml:"subjects,flow"`
}

// Candidate is one complete schedule from the candidate pool.
type Candidate struct {
	Scheduled int                `yaml:"scheduled"`
	Z         ir.ObjectiveVector `yaml:"z,flow"`
}

// Instance is a generated scheduling instance.
type Instance struct {
	Name       string      `yaml:"name"`
	Seed       int64       `yaml:"seed"`
	Size       Size        `yaml:"size"`
	Knobs      Knobs       `yaml:"knobs"`
	Members    []Member    `yaml:"members"`
	Defences   []Defence   `yaml:"defences"`
	Candidates []Candidate `yaml:"candidates"`
}

// Validate checks structural consistency.
func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if err := inst.Size.Validate(); err != nil {
		return err
	}
	if err := inst.Knobs.Validate(inst.Size); err != nil {
		return err
	}
	if len(inst.Members) != inst.Size.Members {
		return fmt.Errorf("got %d members, size says %d", len(inst.Members), inst.Size.Members)
	}
	if len(inst.Defences) != inst.Size.Defences {
		return fmt.Errorf("got %d defences, size says %d", len(inst.Defences), inst.Size.Defences)
	}
	if len(inst.Candidates) == 0 {
		return errors.New("instance has no candidates")
	}
	for c, cand := range inst.Candidates {
		if cand.Scheduled < 0 || cand.Scheduled > inst.Size.Defences {
			return fmt.Errorf("candidate %d schedules %d of %d defences", c, cand.Scheduled, inst.Size.Defences)
		}
		if len(cand.Z) != NumObjectives {
			return fmt.Errorf("candidate %d has %d objectives, want %d", c, len(cand.Z), NumObjectives)
		}
		for j, z := range cand.Z {
			if math.IsNaN(z) || math.IsInf(z, 0) {
				return fmt.Errorf("candidate %d: z%d is not finite", c, j+1)
			}
		}
	}
	return nil
}

// MaxScheduled returns the largest Scheduled over all candidates.
func (inst *Instance) MaxScheduled() int {
	best := 0
	for _, c := range inst.Candidates {
		best = max(best, c.Scheduled)
	}
	return best
}

// Bounds returns a conservative [lb, ub] per objective in maximize-form:
// the analytical range implied by the instance data, widened by the range
// observed over the candidate pool.
func (inst *Instance) Bounds() []ir.Bound {
	j := float64(inst.Size.Defences)
	var u, uv, uh float64
	for _, m := range inst.Members {
		u += float64(m.Weight)
		uv += float64(m.Weight * m.V)
		uh += float64(m.Weight * m.H)
	}
	days := float64(inst.Size.Days)

	b := []ir.Bound{
		{LB: -u * j * j, UB: 0},
		{LB: 0, UB: 1},
		{LB: 0, UB: j * float64(inst.Size.Roles*inst.Knobs.TiqPerDefence)},
		{LB: -uv * j, UB: 0},
		{LB: -u * j, UB: 0},
		{LB: -u * days * days, UB: 0},
		{LB: -uh * j, UB: 0},
	}
	for _, c := range inst.Candidates {
		for i, z := range c.Z {
			b[i].LB = math.Min(b[i].LB, z)
			b[i].UB = math.Max(b[i].UB, z)
		}
	}
	return b
}

// Fingerprint returns a content-addressed ID over the generated data.
func (inst *Instance) Fingerprint() (string, error) {
	members := make([]any, len(inst.Members))
	for i, m := range inst.Members {
		members[i] = map[string]any{
			"weight":   m.Weight,
			"subjects": m.Subjects,
			"v":        m.V,
			"h":        m.H,
		}
	}
	defences := make([]any, len(inst.Defences))
	for i, d := range inst.Defences {
		defences[i] = map[string]any{"subjects": d.Subjects}
	}
	candidates := make([]any, len(inst.Candidates))
	for i, c := range inst.Candidates {
		candidates[i] = map[string]any{"scheduled": c.Scheduled, "z": c.Z}
	}
	return ir.Fingerprint(ir.DomainInstance, map[string]any{
		"size": map[string]any{
			"members":    inst.Size.Members,
			"defences":   inst.Size.Defences,
			"days":       inst.Size.Days,
			"slots":      inst.Size.Slots,
			"rooms":      inst.Size.Rooms,
			"roles":      inst.Size.Roles,
			"subjects":   inst.Size.Subjects,
			"d":          inst.Size.D,
			"candidates": inst.Size.Candidates,
		},
		"knobs": map[string]any{
			"fixed_roles":     inst.Knobs.FixedRoles,
			"p_lik0":          inst.Knobs.PLik0,
			"p_mkp0":          inst.Knobs.PMkp0,
			"p_v21":           inst.Knobs.PV21,
			"p_h21":           inst.Knobs.PH21,
			"riq_per_member":  inst.Knobs.RiqPerMember,
			"tiq_per_defence": inst.Knobs.TiqPerDefence,
		},
		"seed":       inst.Seed,
		"members":    members,
		"defences":   defences,
		"candidates": candidates,
	})
}
