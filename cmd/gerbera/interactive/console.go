// Package interactive provides the interactive command-line console of the
// media server. Commands are dispatched through the server callback, so
// they exercise the same path as requests from the network.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/wareck/gerbera/pkg/description"
	"github.com/wareck/gerbera/pkg/server"
	"github.com/wareck/gerbera/pkg/transport"
	"github.com/wareck/gerbera/pkg/upnp"
)

// Server is the part of the media server the console drives.
type Server interface {
	Callback(ctx context.Context, ev upnp.Event) (upnp.Request, error)
	State() server.ServiceState
	UDN() string
	IP() string
	Port() string
	VirtualURL() string
	DeviceHandle() transport.Handle
	Description() string
}

// Notifier sends events to subscribers.
type Notifier interface {
	Notify(ctx context.Context, serviceID string, vars ...upnp.StateVariable) error
	SubscriptionCount() int
}

// Target is what the console operates on.
type Target struct {
	Server   Server
	Notifier Notifier

	// Services are the registered services, for name resolution.
	Services []description.Service
}

// Console is the interactive command loop.
type Console struct {
	rl     *readline.Instance
	out    io.Writer
	target Target
	sidSeq int
}

// New creates a console on the terminal.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gerbera> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("help"),
			readline.PcItem("status"),
			readline.PcItem("services"),
			readline.PcItem("description"),
			readline.PcItem("action"),
			readline.PcItem("subscribe"),
			readline.PcItem("notify"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl, out: rl.Stdout()}, nil
}

// Stderr returns a writer that coordinates with the prompt. Use it for
// log output.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run reads commands until quit, EOF or ctx ends. Quitting calls cancel.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc, target Target) {
	defer c.rl.Close()
	c.target = target

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if c.Execute(ctx, line) {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns true when the console should
// exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "status", "s":
		c.cmdStatus()
	case "services":
		c.cmdServices()
	case "description", "desc":
		fmt.Fprintln(c.out, c.target.Server.Description())
	case "action", "a":
		c.cmdAction(ctx, args)
	case "subscribe", "sub":
		c.cmdSubscribe(ctx, args)
	case "notify", "n":
		c.cmdNotify(ctx, args)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Gerbera Commands:
  Device:
    status                              - Show lifecycle state and address
    services                            - List registered services
    description                         - Print the device description

  Dispatch:
    action <service> <name> [k=v ...]   - Invoke an action through the dispatcher
    subscribe <service> [seconds]       - Offer a subscription to a service
    notify <service> <var>=<value> ...  - Send an event to subscribers

  Services are named by id, short name (cds, cm) or id suffix.

  Other:
    help                                - Show this help
    quit                                - Stop the server and exit`)
}

func (c *Console) cmdStatus() {
	s := c.target.Server
	fmt.Fprintf(c.out, "State:         %s\n", s.State())
	fmt.Fprintf(c.out, "UDN:           %s\n", s.UDN())
	fmt.Fprintf(c.out, "Address:       %s:%s\n", s.IP(), s.Port())
	fmt.Fprintf(c.out, "Virtual URL:   %s\n", s.VirtualURL())
	fmt.Fprintf(c.out, "Device handle: %d\n", s.DeviceHandle())
	if c.target.Notifier != nil {
		fmt.Fprintf(c.out, "Subscriptions: %d\n", c.target.Notifier.SubscriptionCount())
	}
}

func (c *Console) cmdServices() {
	for _, svc := range c.target.Services {
		fmt.Fprintf(c.out, "  %-6s %s (%s)\n", path.Base(svc.ControlURL), svc.ID, svc.Type)
	}
}

// resolve maps a service name to its id.
func (c *Console) resolve(name string) (string, bool) {
	for _, svc := range c.target.Services {
		if svc.ID == name ||
			strings.EqualFold(path.Base(svc.ControlURL), name) ||
			strings.HasSuffix(strings.ToLower(svc.ID), ":"+strings.ToLower(name)) {
			return svc.ID, true
		}
	}
	return "", false
}

func (c *Console) cmdAction(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: action <service> <name> [k=v ...]")
		return
	}
	id, ok := c.resolve(args[0])
	if !ok {
		// Unknown names are dispatched as ids.
		id = args[0]
	}

	ev := &upnp.ActionEvent{
		ServiceID:  id,
		ActionName: args[1],
		DeviceUDN:  c.target.Server.UDN(),
		RemoteAddr: "console",
	}
	for _, kv := range args[2:] {
		k, v, _ := strings.Cut(kv, "=")
		ev.Arguments = append(ev.Arguments, upnp.Argument{Name: k, Value: v})
	}

	req, err := c.target.Server.Callback(ctx, ev)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintln(c.out, "OK")
	if ar, ok := req.(*upnp.ActionRequest); ok {
		for _, a := range ar.Result {
			fmt.Fprintf(c.out, "  %s = %s\n", a.Name, a.Value)
		}
	}
}

func (c *Console) cmdSubscribe(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: subscribe <service> [seconds]")
		return
	}
	id, ok := c.resolve(args[0])
	if !ok {
		id = args[0]
	}
	var requested time.Duration
	if len(args) > 1 {
		secs, err := strconv.Atoi(args[1])
		if err != nil || secs < 0 {
			fmt.Fprintf(c.out, "Invalid duration: %s\n", args[1])
			return
		}
		requested = time.Duration(secs) * time.Second
	}

	c.sidSeq++
	ev := &upnp.SubscriptionEvent{
		ServiceID: id,
		DeviceUDN: c.target.Server.UDN(),
		SID:       fmt.Sprintf("uuid:console-%d", c.sidSeq),
		Requested: requested,
	}

	req, err := c.target.Server.Callback(ctx, ev)
	if err != nil {
		c.printError(err)
		return
	}
	sr, ok := req.(*upnp.SubscriptionRequest)
	if !ok || !sr.Accepted {
		fmt.Fprintln(c.out, "Subscription rejected")
		return
	}
	granted := "infinite"
	if sr.Granted > 0 {
		granted = sr.Granted.String()
	}
	fmt.Fprintf(c.out, "Accepted %s (granted %s)\n", sr.SID, granted)
	for _, v := range sr.Variables {
		fmt.Fprintf(c.out, "  %s = %s\n", v.Name, v.Value)
	}
}

func (c *Console) cmdNotify(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: notify <service> <var>=<value> ...")
		return
	}
	if c.target.Notifier == nil {
		fmt.Fprintln(c.out, "Eventing is not available")
		return
	}
	id, ok := c.resolve(args[0])
	if !ok {
		fmt.Fprintf(c.out, "Unknown service: %s\n", args[0])
		return
	}

	var vars []upnp.StateVariable
	for _, kv := range args[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(c.out, "Expected var=value, got %s\n", kv)
			return
		}
		vars = append(vars, upnp.StateVariable{Name: k, Value: v})
	}

	if err := c.target.Notifier.Notify(ctx, id, vars...); err != nil {
		fmt.Fprintf(c.out, "Notify failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Sent %d variable(s) to %d subscription(s)\n", len(vars), c.target.Notifier.SubscriptionCount())
}

func (c *Console) printError(err error) {
	var aErr *upnp.ActionError
	if errors.As(err, &aErr) {
		fmt.Fprintf(c.out, "Error [%s] %d: %s\n", upnp.StatusOf(err), aErr.Code, aErr.Description)
		return
	}
	fmt.Fprintf(c.out, "Error [%s]: %v\n", upnp.StatusOf(err), err)
}
