package migrate

import (
	"github.com/thoreinstein/settler/internal/document"
	"github.com/thoreinstein/settler/internal/errors"
)

// Migrate brings doc to version current using the transforms in t.
//
// Equal versions return doc itself. Otherwise doc is deep-copied and folded
// through the plan's transforms, and the result's version is forced to
// current. A downgrade step without a down transform stops the fold and
// returns document.Sentinel() with an error matching
// errors.ErrMigrationUnreachable. An unparseable version yields an error
// matching errors.ErrInvalidVersion and a nil document.
func Migrate(doc document.Document, current string, t *Table) (document.Document, error) {
	p, err := t.Plan(doc.Version(), current)
	if err != nil {
		return nil, err
	}
	return p.Apply(doc)
}

// Apply folds doc through the plan.
func (p *Plan) Apply(doc document.Document) (document.Document, error) {
	if p.Direction == None {
		return doc, nil
	}

	out := doc.Clone()
	for _, m := range p.Steps {
		fn := m.Up
		if p.Direction == Down {
			fn = m.Down
		}
		if fn == nil {
			return document.Sentinel(), errors.Wrapf(errors.ErrMigrationUnreachable,
				"no down transform registered for version %s (downgrading %s to %s)", m.Version, p.From, p.To)
		}
		out = fn(out)
		if out == nil {
			out = document.Document{}
		}
	}

	return out.WithVersion(p.To), nil
}
