package exec

import "testing"

func TestCheckBlocklistRejectsDestructivePatterns(t *testing.T) {
	cases := []string{
		"rm -rf /",
		"rm -fr /",
		"mkfs.ext4 /dev/sda1",
		"dd if=/dev/zero of=/dev/sda",
		":(){ :|:& };:",
		"cat /dev/sda1",
		"echo hi > /dev/nvme0n1",
	}
	for _, cmd := range cases {
		if err := CheckBlocklist(cmd); err == nil {
			t.Errorf("CheckBlocklist(%q) = nil, want blocked error", cmd)
		}
	}
}

func TestCheckBlocklistAllowsSafeCommands(t *testing.T) {
	cases := []string{
		"echo hello",
		"ls -la /tmp",
		"rm file.txt",
		"git status",
	}
	for _, cmd := range cases {
		if err := CheckBlocklist(cmd); err != nil {
			t.Errorf("CheckBlocklist(%q) = %v, want nil", cmd, err)
		}
	}
}
