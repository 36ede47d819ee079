package policy

// profileTools tables the built-in tools each named profile grants,
// generalized from the teacher's larger group/profile system
// (internal/tools/policy/groups.go) down to the three profiles spec.md
// names explicitly (coding, minimal, full).
var profileTools = map[Profile][]string{
	ProfileMinimal: {
		"agents_list", "sessions_list", "session_status", "memory",
	},
	ProfileCoding: {
		"read_file", "write_file", "list_files", "file_search",
		"shell", "web_fetch", "web_search", "memory",
		"agents_list", "sessions_list", "session_status",
	},
	// ProfileFull grants nothing extra by table lookup: IsAllowed treats
	// it as "everything not denied" (see resolver.go), matching the
	// teacher's ProfileFull comment ("allows everything not explicitly
	// denied").
	ProfileFull: {},
}

// ToolsForProfile returns the tool names a profile grants by table
// lookup. It does not account for ProfileFull's "everything" rule --
// callers computing an effective set should use Resolver.Effective.
func ToolsForProfile(p Profile) []string {
	tools := profileTools[p]
	out := make([]string, len(tools))
	copy(out, tools)
	return out
}
