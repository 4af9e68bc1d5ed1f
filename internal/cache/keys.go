package cache

import "strings"

// Key builders shared by every surface reading the cache, so the board and
// the settings screen hit the same entries.

// ProjectKey is the cache key for one project's detail payload.
func ProjectKey(projectID string) string {
	return "projects/" + projectID
}

// ProjectListPrefix is the shared prefix of every project list key. Pass it
// to InvalidatePrefix to refetch all list entries regardless of search term.
const ProjectListPrefix = "projects?search="

// ProjectListKey is the cache key for a project list query. The search term
// is part of the key, so a superseded search resolves into its own entry
// instead of overwriting a newer one.
func ProjectListKey(search string) string {
	return ProjectListPrefix + strings.ToLower(strings.TrimSpace(search))
}

// UsersKey is the cache key for the user picker list.
const UsersKey = "users"
