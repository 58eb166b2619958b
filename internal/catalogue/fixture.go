// Package catalogue loads the host-authored assessment content: a VFS
// seed fixture and an objective/level catalogue, both YAML documents,
// plus a reference ObjectiveEvaluator implementation that evaluates the
// catalogue's rules against a running session.
package catalogue

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/assessments/shellcore/internal/vfs"
)

// PermissionsField handles YAML unmarshaling of a node's permissions as
// either a plain display string ("drwxr-xr-x") or a structured
// {owner,group,other} triple of rwx strings, following the teacher's
// NetworkField/EnvField scalar-or-structured union pattern.
type PermissionsField string

type structuredPermissions struct {
	Owner string `yaml:"owner"`
	Group string `yaml:"group"`
	Other string `yaml:"other"`
	Kind  string `yaml:"kind"` // "file" | "directory" | "symlink", selects the leading char
}

func (p *PermissionsField) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*p = PermissionsField(value.Value)
		return nil
	}
	var sp structuredPermissions
	if err := value.Decode(&sp); err != nil {
		return err
	}
	lead := "-"
	switch sp.Kind {
	case "directory":
		lead = "d"
	case "symlink":
		lead = "l"
	}
	pad := func(s string) string {
		s = fmt.Sprintf("%-3s", s)
		return strings.ReplaceAll(s, " ", "-")
	}
	*p = PermissionsField(lead + pad(sp.Owner) + pad(sp.Group) + pad(sp.Other))
	return nil
}

// FixtureNode is the YAML document shape for one node of a seeded VFS
// tree: the same recursive shape as vfs.SnapshotNode, but with a
// permissions field that accepts the richer structured form above.
type FixtureNode struct {
	Type        string                  `yaml:"type"`
	Content     string                  `yaml:"content,omitempty"`
	Target      string                  `yaml:"target,omitempty"`
	Permissions PermissionsField        `yaml:"permissions,omitempty"`
	Children    map[string]*FixtureNode `yaml:"children,omitempty"`
}

func (f *FixtureNode) toSnapshot(name string) *vfs.SnapshotNode {
	s := &vfs.SnapshotNode{
		Name:        name,
		Type:        f.Type,
		Content:     f.Content,
		Target:      f.Target,
		Permissions: string(f.Permissions),
	}
	if len(f.Children) > 0 {
		s.Children = map[string]*vfs.SnapshotNode{}
		for childName, child := range f.Children {
			s.Children[childName] = child.toSnapshot(childName)
		}
	}
	return s
}

// Fixture is a named, loadable VFS seed: a root FixtureNode plus home,
// user and hostname fields. cmd/shellcored builds the session tree from
// Root only; it boots every session with its own fixed home directory,
// user and hostname, not these fields.
type Fixture struct {
	Home     string       `yaml:"home"`
	User     string       `yaml:"user"`
	Hostname string       `yaml:"hostname"`
	Root     *FixtureNode `yaml:"root"`
}

// LoadFixture reads and parses a VFS seed fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalogue: read fixture %s: %w", path, err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("catalogue: parse fixture %s: %w", path, err)
	}
	if fx.Root == nil {
		fx.Root = &FixtureNode{Type: "directory"}
	}
	return &fx, nil
}

// Build constructs a *vfs.VFS seeded from the fixture.
func (f *Fixture) Build() *vfs.VFS {
	snap := f.Root.toSnapshot("/")
	return vfs.FromSnapshot(snap)
}
