package session

import (
	"path/filepath"

	"github.com/bashclaw/bashclaw/internal/config"
)

// Path resolves (agent_id, channel, sender, scope) to the session's
// on-disk path, a pure function of its arguments (§3 invariant 5).
func Path(root, agentID, channel, sender string, scope config.Scope) string {
	switch scope {
	case config.ScopePerChannel:
		return filepath.Join(root, agentID, channel+".jsonl")
	case config.ScopeGlobal:
		return filepath.Join(root, agentID+".jsonl")
	case config.ScopePerSender:
		fallthrough
	default:
		if sender == "" {
			return filepath.Join(root, agentID, channel+".jsonl")
		}
		return filepath.Join(root, agentID, channel, sender+".jsonl")
	}
}
