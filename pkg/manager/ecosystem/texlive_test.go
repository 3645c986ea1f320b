package ecosystem

import (
	"context"
	"testing"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

func TestParseTlmgrUpdates(t *testing.T) {
	output := `tlmgr: package repository https://mirror.ctan.org/systems/texlive/tlnet
update:   hyperref             [409k]: local:    68812, source:    69124
update:   geometry             [12k]: local:    61101, source:    61343
update:   texlive.infra        [551k]: local:    69000, source:    69200
`
	pkgs := parseTlmgrUpdates(output, true)
	if len(pkgs) != 2 {
		t.Fatalf("expected 2 packages (infra excluded), got %d", len(pkgs))
	}

	if pkgs[0].Name != "geometry" || pkgs[1].Name != "hyperref" {
		t.Errorf("expected sorted names, got %s, %s", pkgs[0].Name, pkgs[1].Name)
	}
	if pkgs[1].CurrentVersion != "68812" || pkgs[1].LatestVersion != "69124" {
		t.Errorf("unexpected revisions: %+v", pkgs[1])
	}
	for _, pkg := range pkgs {
		if !pkg.RequiresPrivilege {
			t.Errorf("%s should carry the privilege flag", pkg.Name)
		}
	}
}

func TestParseTlmgrUpdatesUnprivileged(t *testing.T) {
	pkgs := parseTlmgrUpdates("update:   hyperref [409k]: local: 1, source: 2\n", false)
	if len(pkgs) != 1 || pkgs[0].RequiresPrivilege {
		t.Errorf("user-tree packages should not require privilege: %+v", pkgs)
	}
}

func TestParseTlmgrUpdatesEmpty(t *testing.T) {
	if pkgs := parseTlmgrUpdates("tlmgr: no updates available\n", true); len(pkgs) != 0 {
		t.Errorf("expected no packages, got %d", len(pkgs))
	}
}

func TestTexLiveApplyUsesSudoWhenPrivileged(t *testing.T) {
	mock := &executor.MockRunner{}
	tex := NewTexLive(executor.New(executor.WithRunner(mock)), true)

	candidates := []manager.PackageInfo{
		{Name: "hyperref", Manager: "texlive", RequiresPrivilege: true},
		{Name: "geometry", Manager: "texlive", RequiresPrivilege: true},
	}
	result := tex.ApplyUpdates(context.Background(), candidates, manager.ApplyOpts{})

	if result.Status != manager.StatusSuccess {
		t.Fatalf("expected success, got %s", result.Status)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected a single bulk invocation, got %d", len(calls))
	}
	if !calls[0].Sudo {
		t.Error("privileged apply should go through sudo")
	}
	if calls[0].Args[0] != "update" || calls[0].Args[1] != "hyperref" || calls[0].Args[2] != "geometry" {
		t.Errorf("unexpected invocation: %v", calls[0].Args)
	}
}

func TestTexLiveApplyUnprivileged(t *testing.T) {
	mock := &executor.MockRunner{}
	tex := NewTexLive(executor.New(executor.WithRunner(mock)), false)

	candidates := []manager.PackageInfo{{Name: "hyperref", Manager: "texlive"}}
	tex.ApplyUpdates(context.Background(), candidates, manager.ApplyOpts{})

	calls := mock.Calls()
	if len(calls) != 1 || calls[0].Sudo {
		t.Errorf("user-tree apply should not use sudo: %+v", calls)
	}
}
