package exec

import (
	"fmt"
	"regexp"

	"github.com/google/shlex"
)

// blocklistPatterns are the destructive-command signatures the shell tool
// rejects before execution. Matched against the raw command string, not
// just the tokenized executable, since some (the fork bomb) have no
// single dangerous argument.
var blocklistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+-[a-zA-Z]*r[a-zA-Z]*f?\s+/`),
	regexp.MustCompile(`\bmkfs\b`),
	regexp.MustCompile(`\bdd\s+if=`),
	regexp.MustCompile(`:\(\)\s*\{\s*:\|:`),
	regexp.MustCompile(`/dev/sd[a-z]`),
	regexp.MustCompile(`/dev/nvme`),
	regexp.MustCompile(`/dev/disk`),
}

// ErrBlocked is returned by CheckBlocklist when a command matches a
// destructive-command signature.
type ErrBlocked struct {
	Command string
	Pattern string
}

func (e *ErrBlocked) Error() string {
	return fmt.Sprintf("blocked: command matches destructive pattern %q", e.Pattern)
}

// CheckBlocklist rejects commands matching one of the shell tool's
// destructive-command signatures. It also tokenizes the command with a
// POSIX-aware shlex split so quoting doesn't hide a blocked token from
// the regex pass -- rejoining the tokens with single spaces normalizes
// away the extra whitespace attackers can otherwise use to dodge the
// `\s+` gaps in the patterns above.
func CheckBlocklist(command string) error {
	for _, p := range blocklistPatterns {
		if p.MatchString(command) {
			return &ErrBlocked{Command: command, Pattern: p.String()}
		}
	}

	tokens, err := shlex.Split(command)
	if err != nil {
		// Unparsable quoting: fall through to letting the shell itself
		// reject or accept it; the raw-string pass above already ran.
		return nil
	}
	normalized := ""
	for i, tok := range tokens {
		if i > 0 {
			normalized += " "
		}
		normalized += tok
	}
	for _, p := range blocklistPatterns {
		if p.MatchString(normalized) {
			return &ErrBlocked{Command: command, Pattern: p.String()}
		}
	}
	return nil
}
