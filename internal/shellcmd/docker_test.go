package shellcmd

import (
	"strings"
	"testing"

	"github.com/assessments/shellcore/internal/shparse"
)

func TestDockerPsDefaultHidesStopped(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdDocker(shparse.ParseCommand("docker ps"), ctx, "")
	if strings.Contains(res.Output, "fleetcore-api") {
		t.Errorf("expected stopped containers hidden without -a: %q", res.Output)
	}
}

func TestDockerStartThenPsShowsContainer(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdDocker(shparse.ParseCommand("docker start fleetcore-api"), ctx, "")
	if res.ExitCode != 0 {
		t.Fatalf("start failed: %+v", res)
	}
	ps := cmdDocker(shparse.ParseCommand("docker ps"), ctx, "")
	if !strings.Contains(ps.Output, "fleetcore-api") {
		t.Errorf("expected fleetcore-api listed after start: %q", ps.Output)
	}
}

func TestDockerStartUnknownContainerFails(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdDocker(shparse.ParseCommand("docker start nope"), ctx, "")
	if res.ExitCode == 0 {
		t.Errorf("expected failure starting unknown container")
	}
}

func TestDockerComposeUpStartsAll(t *testing.T) {
	ctx := newTestContext(t)
	cmdDocker(shparse.ParseCommand("docker compose up"), ctx, "")
	for _, name := range ctx.Sim.Docker.Order {
		if ctx.Sim.Docker.Containers[name].Status != "running" {
			t.Errorf("expected %s running after compose up", name)
		}
	}
}

func TestDockerLogsOnStoppedContainerIsEmpty(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdDocker(shparse.ParseCommand("docker logs fleetcore-db"), ctx, "")
	if res.Output != "" {
		t.Errorf("expected empty logs for stopped container, got %q", res.Output)
	}
}
