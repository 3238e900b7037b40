// Package migrate moves settings documents between application versions by
// folding them through an ordered chain of up or down transforms.
package migrate

import (
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/thoreinstein/settler/internal/document"
	"github.com/thoreinstein/settler/internal/errors"
)

// Transform rewrites a document from one version's shape to its neighbour's.
// It receives a private copy and may mutate it.
type Transform func(document.Document) document.Document

// Migration is the transform pair registered at one version. Up turns a
// document older than Version into Version's shape; Down reverses it and
// may be nil when a downgrade across Version is not supported.
type Migration struct {
	Version string
	Up      Transform
	Down    Transform
}

type step struct {
	version *semver.Version
	Migration
}

// Table is the migration list sorted ascending by version.
type Table struct {
	steps []step
}

// NewTable validates and sorts migrations. Versions must be strict
// major.minor.patch semantic versions and unique; every migration needs an
// Up transform.
func NewTable(migrations ...Migration) (*Table, error) {
	steps := make([]step, 0, len(migrations))
	for _, m := range migrations {
		v, err := parseVersion(m.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "migration %q", m.Version)
		}
		if m.Up == nil {
			return nil, errors.Newf("migration %q: up transform is required", m.Version)
		}
		steps = append(steps, step{version: v, Migration: m})
	}

	slices.SortFunc(steps, func(a, b step) int {
		return a.version.Compare(b.version)
	})

	for i := 1; i < len(steps); i++ {
		if steps[i].version.Equal(steps[i-1].version) {
			return nil, errors.Newf("duplicate migration for version %s", steps[i].version)
		}
	}

	return &Table{steps: steps}, nil
}

// MustTable is NewTable that panics on error, for package-level tables.
func MustTable(migrations ...Migration) *Table {
	t, err := NewTable(migrations...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of registered migrations.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.steps)
}

// Versions returns the registered versions in ascending order.
func (t *Table) Versions() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.steps))
	for i, s := range t.steps {
		out[i] = s.Version
	}
	return out
}

func parseVersion(v string) (*semver.Version, error) {
	parsed, err := semver.StrictNewVersion(v)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidVersion), "parsing version %q", v)
	}
	return parsed, nil
}

// Compare orders two version strings: -1 if a < b, 0 if equal, 1 if a > b.
func Compare(a, b string) (int, error) {
	va, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := parseVersion(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}
