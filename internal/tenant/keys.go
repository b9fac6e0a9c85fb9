// Package tenant derives the composite group keys that partition the shared
// knowledge graph into per-user, per-category scopes.
package tenant

import "fmt"

// Namespace returns the group key for one (user, category) pair. The scheme
// is deterministic and collision-free as long as user IDs do not themselves
// contain the "_" separator followed by a category-like suffix; the key
// format is a wire convention shared with stored data, so it cannot be
// changed without migrating every group_id in the graph.
func Namespace(userID, category string) string {
	return fmt.Sprintf("user_%s_%s", userID, category)
}

// Prefix returns the key prefix shared by every category namespace of one
// user. Enumerating a user's namespaces is a prefix match on this value.
func Prefix(userID string) string {
	return fmt.Sprintf("user_%s_", userID)
}
