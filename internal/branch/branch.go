// Package branch enumerates the root-to-leaf branches of a message tree.
package branch

import (
	"sort"

	"github.com/psaban20/claude-conversation-manager/internal/excerpt"
	"github.com/psaban20/claude-conversation-manager/internal/model"
	"github.com/psaban20/claude-conversation-manager/internal/tree"
)

// UnknownName is the display name of a file without branches.
const UnknownName = "Unknown"

// Resolve returns one branch per non-sidechain leaf, most recent leaf first.
// titles maps leaf ids to their current title record; untitled branches are
// named by policy from their first user message.
func Resolve(t *tree.Tree, titles map[string]string, policy excerpt.Policy) []model.Branch {
	var out []model.Branch
	for _, leaf := range t.VisibleLeaves() {
		nodes, truncated := t.Path(leaf)
		if len(nodes) == 0 {
			continue
		}
		ids := make([]string, len(nodes))
		msgs := make([]*model.Message, len(nodes))
		for i, n := range nodes {
			ids[i] = n.Msg.ID
			msgs[i] = n.Msg
		}

		b := model.Branch{
			LeafID:       leaf.Msg.ID,
			Path:         ids,
			Timestamp:    leaf.Msg.Timestamp,
			MessageCount: len(nodes),
			Truncated:    truncated,
		}
		if title, ok := titles[leaf.Msg.ID]; ok {
			b.CurrentTitle = title
			b.IsTitled = true
		} else {
			b.CurrentTitle = policy.Title(msgs)
		}
		out = append(out, b)
	}

	// ISO 8601 timestamps order lexically.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// DisplayName returns the name the viewer shows for a file: the title of the
// most recent branch.
func DisplayName(branches []model.Branch) string {
	if len(branches) == 0 {
		return UnknownName
	}
	return branches[0].CurrentTitle
}
