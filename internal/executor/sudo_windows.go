//go:build windows

package executor

import (
	"os/exec"

	"golang.org/x/sys/windows"
)

// isRoot reports whether the process token belongs to the Administrators
// group, the closest Windows analog to euid 0.
func isRoot() bool {
	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := windows.Token(0).IsMember(sid)
	if err != nil {
		return false
	}
	return member
}

// hasSudo reports whether a sudo-style elevator exists on PATH: the Windows 11
// built-in sudo or gsudo. The negotiation strategies assume sudo semantics
// (-n, -v), which both provide.
func hasSudo() bool {
	for _, name := range []string{"sudo", "gsudo"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
