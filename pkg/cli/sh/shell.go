package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	env "github.com/robotalks/tiller.go/pkg/env/connector"
	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/helm"
	"github.com/robotalks/tiller.go/pkg/link"
	"github.com/robotalks/tiller.go/pkg/link/mqtt"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Conn
}

// Conn is an established connection to an actuator.
type Conn struct {
	Ctx    context.Context
	Cancel func()
	Name   string
	Conn   link.Conn
	Helm   *helm.Helm

	stopHelm func()
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints Info into friendly string for display.
func FormatInfo(info mqtt.Info) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	if err := info.CheckProtocol(); err != nil {
		fmt.Fprintf(&w, " (incompatible: %v)", err)
	}
	return w.String()
}

// Print prints v as JSON when OutputJSON is set, or the text otherwise.
func Print(c *ishell.Context, v interface{}, text string) {
	if !ShellFrom(c).OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Discover discovers actuators.
func (s *Shell) Discover(filter func(mqtt.Info) bool) ([]mqtt.Info, error) {
	infoList, err := s.Config.Discover(context.TODO())
	if err != nil {
		return nil, err
	}
	if filter != nil {
		items := make([]mqtt.Info, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return infoList, nil
}

// Select discovers actuators and asks for a choice.
func (s *Shell) Select(filter func(mqtt.Info) bool) (*mqtt.Info, error) {
	infoList, err := s.Discover(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 actuators discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}
	return &infoList[index], nil
}

// Connect connects the actuator. ref is ignored by links without discovery.
func (s *Shell) Connect(ref mqtt.Ref) error {
	conn := &Conn{Name: s.Config.URL}
	if ref.IsValid() {
		conn.Name = ref.Name()
	}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	var err error
	if conn.Conn, err = s.Config.Connect(conn.Ctx, ref); err != nil {
		conn.Cancel()
		return err
	}
	conn.Helm = helm.New(conn.Conn)
	s.Disconnect()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conn.Name))
	return nil
}

// Disconnect disconnects current actuator.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.StopHelm()
		s.Conn.Cancel()
		s.Conn.Conn.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// StartHelm keeps sending the helm power level until StopHelm.
func (c *Conn) StartHelm() {
	if c.stopHelm != nil {
		return
	}
	ctx, cancel := context.WithCancel(c.Ctx)
	runner := fx.NewRunnerWith(ctx).Go(c.Helm)
	c.stopHelm = func() {
		cancel()
		runner.Wait()
	}
}

// StopHelm stops sending the helm power level.
func (c *Conn) StopHelm() {
	if c.stopHelm != nil {
		c.stopHelm()
		c.stopHelm = nil
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		scheme, err := s.Config.Scheme()
		if err != nil {
			log.Fatalln(err)
		}
		if ref := s.Config.Ref(); ref.IsValid() || scheme != "mqtt" {
			if s.Interactive {
				s.Shell.Printf("Connecting %s ...\n", s.Config.URL)
			}
			if err := s.Connect(ref); err != nil {
				log.Fatalf("connect %q failed: %v", s.Config.URL, err)
			}
		}
	}

	if len(args) > 0 {
		err := s.Shell.Process(args...)
		s.Disconnect()
		if err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		s.Disconnect()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers actuators.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.Discover(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []mqtt.Info{}
				}
				Print(c, infoList, "")
				return
			}
			if len(infoList) == 0 {
				c.Println("No actuators found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects an actuator.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE [ID]]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref mqtt.Ref
			if len(c.Args) >= 2 {
				ref.Type, ref.ID = c.Args[0], c.Args[1]
			} else if scheme, _ := s.Config.Scheme(); scheme == "mqtt" {
				var filter func(mqtt.Info) bool
				if len(c.Args) == 1 {
					filter = func(info mqtt.Info) bool {
						return info.Ref.Type == c.Args[0]
					}
				}
				info, err := s.Select(filter)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no actuator discovered"))
					return
				}
				if err := info.CheckProtocol(); err != nil {
					c.Err(err)
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current actuator.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
