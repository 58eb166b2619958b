package shellcmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/assessments/shellcore/internal/shparse"
)

// DockerContainer is one simulated container entry.
type DockerContainer struct {
	Name    string
	Image   string
	Status  string // "running" or "exited"
	Ports   string
	Command string
}

// DockerState is the per-session simulated docker daemon: a fixed set of
// containers (seeded stopped, per §4.3) that start/stop/compose toggle.
type DockerState struct {
	Containers map[string]*DockerContainer
	Order      []string
}

func NewDockerState() *DockerState {
	order := []string{"fleetcore-api", "fleetcore-db", "fleetcore-cache"}
	containers := map[string]*DockerContainer{
		"fleetcore-api": {
			Name: "fleetcore-api", Image: "fleetcore/api:latest", Status: "exited",
			Ports: "3000/tcp", Command: "node server.js",
		},
		"fleetcore-db": {
			Name: "fleetcore-db", Image: "postgres:16-alpine", Status: "exited",
			Ports: "5432/tcp", Command: "docker-entrypoint.sh postgres",
		},
		"fleetcore-cache": {
			Name: "fleetcore-cache", Image: "redis:7-alpine", Status: "exited",
			Ports: "6379/tcp", Command: "redis-server",
		},
	}
	return &DockerState{Containers: containers, Order: order}
}

func (r *Registry) registerDocker() {
	r.Register("docker", cmdDocker)
}

func cmdDocker(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("Usage:  docker [OPTIONS] COMMAND")
	}
	d := ctx.Sim.Docker
	sub := cmd.Args[0]
	rest := cmd.Args[1:]
	switch sub {
	case "start":
		return dockerStart(d, rest)
	case "stop":
		return dockerStop(d, rest)
	case "ps":
		return dockerPs(d, cmd)
	case "images":
		return dockerImages(d)
	case "logs":
		return dockerLogs(d, rest)
	case "exec":
		return dockerExec(d, rest)
	case "inspect":
		return dockerInspect(d, rest)
	case "compose":
		return dockerCompose(d, rest)
	default:
		return fail(fmt.Sprintf("docker: '%s' is not a docker command.\nSee 'docker --help'", sub))
	}
}

func dockerStart(d *DockerState, args []string) Result {
	if len(args) == 0 {
		return usage("\"docker start\" requires at least 1 argument.")
	}
	var started []string
	for _, name := range args {
		c, found := d.Containers[name]
		if !found {
			return fail(fmt.Sprintf("Error: No such container: %s", name))
		}
		c.Status = "running"
		started = append(started, name)
	}
	return ok(strings.Join(started, "\n"))
}

func dockerStop(d *DockerState, args []string) Result {
	if len(args) == 0 {
		return usage("\"docker stop\" requires at least 1 argument.")
	}
	var stopped []string
	for _, name := range args {
		c, found := d.Containers[name]
		if !found {
			return fail(fmt.Sprintf("Error: No such container: %s", name))
		}
		c.Status = "exited"
		stopped = append(stopped, name)
	}
	return ok(strings.Join(stopped, "\n"))
}

func dockerPs(d *DockerState, cmd shparse.Command) Result {
	all := cmd.FlagBool("a")
	var lines []string
	lines = append(lines, fmt.Sprintf("%-16s %-22s %-22s %-10s %-10s %s", "CONTAINER ID", "IMAGE", "COMMAND", "STATUS", "PORTS", "NAMES"))
	for _, name := range d.Order {
		c := d.Containers[name]
		if c.Status != "running" && !all {
			continue
		}
		status := "Up 2 minutes"
		if c.Status == "exited" {
			status = "Exited (0)"
		}
		id := fmt.Sprintf("%012x", len(name)*31+17)[:12]
		lines = append(lines, fmt.Sprintf("%-16s %-22s %-22q %-10s %-10s %s", id, c.Image, c.Command, status, c.Ports, c.Name))
	}
	return ok(strings.Join(lines, "\n"))
}

func dockerImages(d *DockerState) Result {
	var lines []string
	lines = append(lines, fmt.Sprintf("%-30s %-10s %-16s %s", "REPOSITORY", "TAG", "IMAGE ID", "SIZE"))
	seen := map[string]bool{}
	for _, name := range d.Order {
		c := d.Containers[name]
		if seen[c.Image] {
			continue
		}
		seen[c.Image] = true
		repo, tag := splitImage(c.Image)
		lines = append(lines, fmt.Sprintf("%-30s %-10s %-16s %s", repo, tag, fmt.Sprintf("%012x", len(repo))[:12], "124MB"))
	}
	return ok(strings.Join(lines, "\n"))
}

func splitImage(image string) (string, string) {
	if i := strings.LastIndex(image, ":"); i >= 0 {
		return image[:i], image[i+1:]
	}
	return image, "latest"
}

func dockerLogs(d *DockerState, args []string) Result {
	if len(args) == 0 {
		return usage("\"docker logs\" requires at least 1 argument.")
	}
	name := args[len(args)-1]
	c, found := d.Containers[name]
	if !found {
		return fail(fmt.Sprintf("Error: No such container: %s", name))
	}
	if c.Status != "running" {
		return ok("")
	}
	return ok(fmt.Sprintf("%s listening on port %s\n%s started successfully", c.Name, c.Ports, c.Name))
}

func dockerExec(d *DockerState, args []string) Result {
	if len(args) < 2 {
		return usage("\"docker exec\" requires at least 2 arguments.")
	}
	name := args[0]
	c, found := d.Containers[name]
	if !found {
		return fail(fmt.Sprintf("Error: No such container: %s", name))
	}
	if c.Status != "running" {
		return fail(fmt.Sprintf("Error response from daemon: Container %s is not running", name))
	}
	return ok(fmt.Sprintf("[exec in %s] %s", name, strings.Join(args[1:], " ")))
}

func dockerInspect(d *DockerState, args []string) Result {
	if len(args) == 0 {
		return usage("\"docker inspect\" requires at least 1 argument.")
	}
	name := args[0]
	c, found := d.Containers[name]
	if !found {
		return fail(fmt.Sprintf("Error: No such object: %s", name))
	}
	return ok(fmt.Sprintf(`[{"Name": "/%s", "Image": "%s", "State": {"Status": "%s"}}]`, c.Name, c.Image, c.Status))
}

func dockerCompose(d *DockerState, args []string) Result {
	if len(args) == 0 {
		return usage("Usage: docker compose COMMAND")
	}
	switch args[0] {
	case "up":
		var names []string
		for _, name := range d.Order {
			d.Containers[name].Status = "running"
			names = append(names, fmt.Sprintf("Container %s  Started", name))
		}
		sort.Strings(names)
		return ok(strings.Join(names, "\n"))
	case "down":
		var names []string
		for _, name := range d.Order {
			d.Containers[name].Status = "exited"
			names = append(names, fmt.Sprintf("Container %s  Removed", name))
		}
		sort.Strings(names)
		return ok(strings.Join(names, "\n"))
	default:
		return fail(fmt.Sprintf("unknown docker compose command: %s", args[0]))
	}
}
