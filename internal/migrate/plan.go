package migrate

import (
	"slices"

	"github.com/thoreinstein/settler/internal/errors"
)

// Direction says which way a plan moves a document.
type Direction int

const (
	// None means the versions are equal.
	None Direction = iota
	// Up moves an older document forward.
	Up
	// Down moves a newer document back.
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "upgrade"
	case Down:
		return "downgrade"
	default:
		return "none"
	}
}

// Plan is the ordered list of migrations a document passes through.
type Plan struct {
	From      string
	To        string
	Direction Direction
	Steps     []Migration
}

// Plan selects the migrations between from and to.
//
// Upgrades take every version k with from < k <= to, ascending. Downgrades
// take every k with to < k <= from, descending. An empty selection is valid.
func (t *Table) Plan(from, to string) (*Plan, error) {
	vFrom, err := parseVersion(from)
	if err != nil {
		return nil, errors.Wrap(err, "document version")
	}
	vTo, err := parseVersion(to)
	if err != nil {
		return nil, errors.Wrap(err, "target version")
	}

	p := &Plan{From: from, To: to}
	var steps []step
	if t != nil {
		steps = t.steps
	}

	switch vFrom.Compare(vTo) {
	case 0:
		p.Direction = None
	case -1:
		p.Direction = Up
		for _, s := range steps {
			if s.version.GreaterThan(vFrom) && !s.version.GreaterThan(vTo) {
				p.Steps = append(p.Steps, s.Migration)
			}
		}
	case 1:
		p.Direction = Down
		for _, s := range steps {
			if s.version.GreaterThan(vTo) && !s.version.GreaterThan(vFrom) {
				p.Steps = append(p.Steps, s.Migration)
			}
		}
		slices.Reverse(p.Steps)
	}

	return p, nil
}

// Reachable reports whether every step of a downgrade has a down transform,
// returning the first version that lacks one.
func (p *Plan) Reachable() (string, bool) {
	if p.Direction != Down {
		return "", true
	}
	for _, m := range p.Steps {
		if m.Down == nil {
			return m.Version, false
		}
	}
	return "", true
}
