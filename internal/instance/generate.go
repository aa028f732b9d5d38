package instance

import (
	"fmt"
	"math/rand"
	"sort"
)

// Generate builds an instance deterministically from size, knobs and seed.
func Generate(size Size, knobs Knobs, seed int64) (*Instance, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	if err := knobs.Validate(size); err != nil {
		return nil, err
	}
	likDiag, err := likDiagonal(knobs.PLik0)
	if err != nil {
		return nil, err
	}
	mkpDiag, err := mkpDiagonal(knobs.PMkp0)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	g := &generator{size: size, knobs: knobs, rng: rng}

	g.members()
	g.eligibility()
	g.defences()

	lik := newMarkov(likDiag, size.D)
	g.lik = make([][][]int, size.Members)
	for i := range g.lik {
		g.lik[i] = lik.sample(rng, size.Days, size.Slots)
	}
	mkp := newMarkov(mkpDiag, size.D)
	g.mkp = make([][][]int, size.Rooms)
	for p := range g.mkp {
		g.mkp[p] = mkp.sample(rng, size.Days, size.Slots)
	}

	inst := &Instance{
		Name:     fmt.Sprintf("%s-s%d", size.Name, seed),
		Seed:     seed,
		Size:     size,
		Knobs:    knobs,
		Members:  g.out.members,
		Defences: g.out.defences,
	}
	inst.Candidates = make([]Candidate, size.Candidates)
	for c := range inst.Candidates {
		inst.Candidates[c] = g.score(g.schedule())
	}
	return inst, nil
}

type generator struct {
	size  Size
	knobs Knobs
	rng   *rand.Rand

	// eligible[i][j][t] is e_ijt.
	eligible [][][]bool

	// lik[i][k][l] in {0,1,2}; mkp[p][k][l] in {0,1}.
	lik [][][]int
	mkp [][][]int

	out struct {
		members  []Member
		defences []Defence
	}
}

func (g *generator) subset(universe, k int) []int {
	perm := g.rng.Perm(universe)[:k]
	sort.Ints(perm)
	return perm
}

func (g *generator) members() {
	n := g.size.Members
	weights := make([]int, n)
	for i := range weights {
		if i < n/2 {
			weights[i] = 7
		} else {
			weights[i] = 3
		}
	}
	g.rng.Shuffle(n, func(a, b int) { weights[a], weights[b] = weights[b], weights[a] })

	g.out.members = make([]Member, n)
	for i := range g.out.members {
		m := Member{Weight: weights[i], V: 1, H: 1}
		m.Subjects = g.subset(g.size.Subjects, g.knobs.RiqPerMember)
		if g.rng.Float64() < g.knobs.PV21 {
			m.V = 3
		}
		if g.rng.Float64() < g.knobs.PH21 {
			m.H = 3
		}
		g.out.members[i] = m
	}
}

// eligibility draws a global eligible set per role (about 70% of members);
// for fixed roles every defence draws its own subset of that set.
func (g *generator) eligibility() {
	m, jn, tn := g.size.Members, g.size.Defences, g.size.Roles
	global := make([][]int, tn)
	for t := range global {
		global[t] = g.subset(m, max(1, m*7/10))
	}
	fixed := make(map[int]bool, g.knobs.FixedRoles)
	for _, t := range g.subset(tn, g.knobs.FixedRoles) {
		fixed[t] = true
	}

	g.eligible = make([][][]bool, m)
	for i := range g.eligible {
		g.eligible[i] = make([][]bool, jn)
		for j := range g.eligible[i] {
			g.eligible[i][j] = make([]bool, tn)
		}
	}
	for j := 0; j < jn; j++ {
		for t := 0; t < tn; t++ {
			pool := global[t]
			if fixed[t] {
				k := min(len(pool), max(1, m*4/10))
				picked := g.rng.Perm(len(pool))[:k]
				for _, x := range picked {
					g.eligible[pool[x]][j][t] = true
				}
				continue
			}
			for _, i := range pool {
				g.eligible[i][j][t] = true
			}
		}
	}
}

func (g *generator) defences() {
	g.out.defences = make([]Defence, g.size.Defences)
	for j := range g.out.defences {
		g.out.defences[j] = Defence{Subjects: g.subset(g.size.Subjects, g.knobs.TiqPerDefence)}
	}
}

type assignment struct {
	defence   int
	day, slot int
	room      int
	committee []int
}

// schedule builds one candidate with a randomized first-fit: defences in
// random order, slots from a random offset, members in random order. A random
// quota leaves some candidates deliberately short of the maximum.
func (g *generator) schedule() []assignment {
	s := g.size
	slots := s.Days * s.Slots
	quota := s.Defences - g.rng.Intn(s.Defences/4+1)

	memberBusy := make([]bool, s.Members*slots)
	roomBusy := make([]bool, s.Rooms*slots)
	memberOrder := g.rng.Perm(s.Members)

	var out []assignment
	for _, j := range g.rng.Perm(s.Defences) {
		if len(out) >= quota {
			break
		}
		start := g.rng.Intn(slots)
		roomStart := g.rng.Intn(s.Rooms)
	search:
		for off := 0; off < slots; off++ {
			at := (start + off) % slots
			k, l := at/s.Slots, at%s.Slots
			for r := 0; r < s.Rooms; r++ {
				p := (roomStart + r) % s.Rooms
				if g.mkp[p][k][l] == 0 || roomBusy[p*slots+at] {
					continue
				}
				committee, ok := g.committee(j, k, l, at, slots, memberOrder, memberBusy)
				if !ok {
					// Members do not depend on the room.
					break
				}
				roomBusy[p*slots+at] = true
				for _, i := range committee {
					memberBusy[i*slots+at] = true
				}
				out = append(out, assignment{defence: j, day: k, slot: l, room: p, committee: committee})
				break search
			}
		}
	}
	return out
}

func (g *generator) committee(j, k, l, at, slots int, order []int, busy []bool) ([]int, bool) {
	committee := make([]int, 0, g.size.Roles)
	taken := make(map[int]bool, g.size.Roles)
	for t := 0; t < g.size.Roles; t++ {
		found := false
		for _, i := range order {
			if taken[i] || busy[i*slots+at] || g.lik[i][k][l] == 0 || !g.eligible[i][j][t] {
				continue
			}
			committee = append(committee, i)
			taken[i] = true
			found = true
			break
		}
		if !found {
			return nil, false
		}
	}
	return committee, true
}

// score evaluates the seven objectives of a schedule in maximize-form.
func (g *generator) score(sched []assignment) Candidate {
	members := g.out.members
	perMember := make([][]assignment, len(members))
	covered, total := 0, 0
	var suitability float64

	for _, d := range g.out.defences {
		total += len(d.Subjects)
	}
	for _, a := range sched {
		def := g.out.defences[a.defence]
		union := make(map[int]bool)
		for _, i := range a.committee {
			perMember[i] = append(perMember[i], a)
			for _, q := range members[i].Subjects {
				union[q] = true
			}
			suitability += float64(shared(members[i].Subjects, def.Subjects))
		}
		for _, q := range def.Subjects {
			if union[q] {
				covered++
			}
		}
	}

	z := make([]float64, NumObjectives)
	if total > 0 {
		z[1] = float64(covered) / float64(total)
	}
	z[2] = suitability

	for i, as := range perMember {
		if len(as) == 0 {
			continue
		}
		u := float64(members[i].Weight)
		sort.Slice(as, func(a, b int) bool {
			if as[a].day != as[b].day {
				return as[a].day < as[b].day
			}
			return as[a].slot < as[b].slot
		})
		load := len(as)
		days := 1
		consecutive, changes := 0, 0
		for x := 1; x < load; x++ {
			prev, cur := as[x-1], as[x]
			if cur.day != prev.day {
				days++
				continue
			}
			if cur.slot == prev.slot+1 {
				consecutive++
			}
			if cur.room != prev.room {
				changes++
			}
		}
		for _, a := range as {
			z[4] -= u * float64(2-g.lik[i][a.day][a.slot])
		}
		z[0] -= u * float64(load*load)
		z[3] -= u * float64(members[i].V*(load-1-consecutive))
		z[5] -= u * float64(days*days)
		z[6] -= u * float64(members[i].H*changes)
	}

	return Candidate{Scheduled: len(sched), Z: z}
}

func shared(a, b []int) int {
	n := 0
	for _, x := range a {
		for _, y := range b {
			if x == y {
				n++
			}
		}
	}
	return n
}
