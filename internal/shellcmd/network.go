package shellcmd

import (
	"fmt"
	"strings"

	"github.com/assessments/shellcore/internal/shparse"
)

func (r *Registry) registerNetwork() {
	r.Register("curl", cmdCurl)
	r.Register("wget", cmdWget)
	r.Register("ping", cmdPing)
	r.Register("netstat", cmdNetstat)
	r.Register("ss", cmdNetstat)
}

// curlRoutes are the canned responses for the assessment's local API,
// keyed by method+path. Matched against localhost:3000, 127.0.0.1:3000,
// and api:3000 — the three hostnames the fixture fleet advertises.
var curlRoutes = map[string]struct {
	Status int
	Body   string
}{
	"GET /health":            {200, `{"status":"ok"}`},
	"GET /api/v1/vehicles":   {200, `[{"id":1,"plate":"FC-1001","status":"active"},{"id":2,"plate":"FC-1002","status":"idle"}]`},
	"POST /api/v1/vehicles":  {201, `{"id":3,"plate":"FC-1003","status":"active"}`},
	"GET /drivers":           {200, `[{"id":1,"name":"jordan"},{"id":2,"name":"priya"}]`},
	"GET /trips":             {200, `[{"id":1,"driver_id":1,"distance_km":12.4}]`},
}

var localAPIHosts = map[string]bool{
	"localhost:3000":  true,
	"127.0.0.1:3000":  true,
	"api:3000":        true,
}

func cmdCurl(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("curl: try 'curl --help' for more information")
	}
	url := cmd.Args[len(cmd.Args)-1]
	method := "GET"
	if m, has := cmd.FlagString("X"); has {
		method = strings.ToUpper(m)
	}
	// "-X METHOD" is coalesced to a bare boolean, so read the method token
	// that follows it from the raw argument text.
	rawFields := strings.Fields(cmd.RawArgs)
	for i, f := range rawFields {
		if f == "-X" && i+1 < len(rawFields) {
			method = strings.ToUpper(rawFields[i+1])
			break
		}
	}
	if _, has := cmd.FlagString("d"); has {
		method = "POST"
	}
	if _, has := cmd.FlagString("data"); has {
		method = "POST"
	}
	verbose := cmd.FlagBool("v")
	includeHeaders := cmd.FlagBool("i") || cmd.FlagBool("I") || cmd.FlagBool("include") || cmd.FlagBool("head")
	headOnly := cmd.FlagBool("I") || cmd.FlagBool("head")

	host := hostFromURL(url)
	path := pathFromURL(url)

	var status int
	var body string
	switch {
	case localAPIHosts[host]:
		route, found := curlRoutes[method+" "+path]
		if !found {
			status, body = 404, `{"error":"not found"}`
		} else {
			status, body = route.Status, route.Body
		}
	case strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1"):
		return fail("curl: (7) Failed to connect: Connection refused")
	default:
		status, body = 200, "<html>OK</html>"
	}

	var b strings.Builder
	if verbose {
		fmt.Fprintf(&b, "> %s %s HTTP/1.1\n> Host: %s\n>\n", method, path, host)
		fmt.Fprintf(&b, "< HTTP/1.1 %d\n< Content-Type: application/json\n<\n", status)
	} else if includeHeaders {
		fmt.Fprintf(&b, "HTTP/1.1 %d\nContent-Type: application/json\n\n", status)
	}
	if !headOnly {
		b.WriteString(body)
	}
	return okCode(b.String(), 0)
}

func hostFromURL(url string) string {
	u := strings.TrimPrefix(url, "http://")
	u = strings.TrimPrefix(u, "https://")
	if i := strings.IndexByte(u, '/'); i >= 0 {
		return u[:i]
	}
	return u
}

func pathFromURL(url string) string {
	u := strings.TrimPrefix(url, "http://")
	u = strings.TrimPrefix(u, "https://")
	if i := strings.IndexByte(u, '/'); i >= 0 {
		p := u[i:]
		if p == "" {
			return "/"
		}
		return p
	}
	return "/"
}

func cmdWget(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("wget: missing URL")
	}
	url := cmd.Args[0]
	host := hostFromURL(url)
	path := pathFromURL(url)
	if !localAPIHosts[host] {
		return fail(fmt.Sprintf("Resolving %s failed: Connection refused.", host))
	}
	route, found := curlRoutes["GET "+path]
	if !found {
		return fail(fmt.Sprintf("Resolving %s failed: Connection refused.", host))
	}
	name := path
	if name == "/" || name == "" {
		name = "index.html"
	} else {
		name = strings.TrimPrefix(name, "/")
	}
	_ = ctx.FS.WriteFile(name, ctx.Cwd, route.Body)
	return ok(fmt.Sprintf("Saving to: '%s'\n\n%s saved", name, name))
}

func cmdPing(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("ping: usage error: Destination address required")
	}
	host := cmd.Args[len(cmd.Args)-1]
	var lines []string
	lines = append(lines, fmt.Sprintf("PING %s (127.0.0.1): 56 data bytes", host))
	for i := 0; i < 3; i++ {
		lines = append(lines, fmt.Sprintf("64 bytes from 127.0.0.1: icmp_seq=%d ttl=64 time=0.0%d ms", i, i+1))
	}
	lines = append(lines, fmt.Sprintf("--- %s ping statistics ---", host))
	lines = append(lines, "3 packets transmitted, 3 packets received, 0.0% packet loss")
	return ok(strings.Join(lines, "\n"))
}

func cmdNetstat(cmd shparse.Command, ctx *Context, stdin string) Result {
	var lines []string
	lines = append(lines, "Proto Recv-Q Send-Q Local Address           Foreign Address         State")
	for _, name := range ctx.Sim.Docker.Order {
		c := ctx.Sim.Docker.Containers[name]
		if c.Status != "running" {
			continue
		}
		port := strings.TrimSuffix(c.Ports, "/tcp")
		lines = append(lines, fmt.Sprintf("tcp        0      0 0.0.0.0:%s%s0.0.0.0:*               LISTEN", port, strings.Repeat(" ", 16-len(port))))
	}
	return ok(strings.Join(lines, "\n"))
}
