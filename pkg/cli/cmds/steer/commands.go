// Package steer provides shell commands steering the connected actuator.
package steer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tiller.go/pkg/cli/sh"
	"github.com/robotalks/tiller.go/pkg/helm"
	"github.com/robotalks/tiller.go/pkg/link"
	"github.com/robotalks/tiller.go/pkg/motor"
	"github.com/robotalks/tiller.go/pkg/msgs"
)

// Timeout for commands waiting on replies.
var Timeout = time.Second

// ParseMove parses arguments of move: A|B [LEVEL].
func ParseMove(args []string) (motor.Command, error) {
	if len(args) < 1 || len(args) > 2 {
		return motor.Command{}, fmt.Errorf("expect A|B [LEVEL]")
	}
	var cmd motor.Command
	switch strings.ToUpper(args[0]) {
	case "A":
		cmd = helm.Move(motor.DirA)
	case "B":
		cmd = helm.Move(motor.DirB)
	default:
		return cmd, fmt.Errorf("invalid direction %q", args[0])
	}
	if len(args) > 1 {
		level, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return cmd, fmt.Errorf("invalid level %q: %v", args[1], err)
		}
		cmd.Intensity = uint8(level)
	}
	return cmd, nil
}

// ParsePower parses arguments of power: -1..1.
func ParsePower(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expect POWER")
	}
	power, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, err
	}
	if power < -1 || power > 1 {
		return 0, fmt.Errorf("power out of range: %v", power)
	}
	return power, nil
}

// ints prints bytes as numbers in JSON, instead of base64.
func ints(buf []byte) []int {
	vals := make([]int, len(buf))
	for n, b := range buf {
		vals[n] = int(b)
	}
	return vals
}

func writeCommand(c *ishell.Context, cmd motor.Command) {
	conn := sh.ShellFrom(c).Conn
	conn.StopHelm()
	if err := conn.Conn.WriteCommand(cmd.Bytes()); err != nil {
		c.Err(err)
		return
	}
	sh.Print(c, ints(cmd.Bytes()), cmd.String())
}

var (
	// MoveCmd drives one direction.
	MoveCmd = ishell.Cmd{
		Name:    "move",
		Aliases: []string{"m"},
		Help:    "A|B [LEVEL]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			cmd, err := ParseMove(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			writeCommand(c, cmd)
		}),
	}

	// StopCmd stops the motor.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			writeCommand(c, helm.StopCommand())
		}),
	}

	// PowerCmd keeps sending a power level.
	PowerCmd = ishell.Cmd{
		Name:    "power",
		Aliases: []string{"p"},
		Help:    "-1..1",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			power, err := ParsePower(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			conn := sh.ShellFrom(c).Conn
			cmd := conn.Helm.SetPower(power)
			conn.StartHelm()
			sh.Print(c, ints(cmd.Bytes()), cmd.String())
		}),
	}

	// ReadCmd reads back the last written buffer.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			reader, ok := sh.ShellFrom(c).Conn.Conn.(link.ValueReader)
			if !ok {
				c.Err(fmt.Errorf("read not supported"))
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), Timeout)
			defer cancel()
			val, err := reader.Read(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, ints(val), fmt.Sprintf("% x", val))
		}),
	}

	// StatusCmd prints the latest status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			switch src := sh.ShellFrom(c).Conn.Conn.(type) {
			case interface {
				ReadStatus(context.Context) (*msgs.MotorStatus, error)
			}:
				ctx, cancel := context.WithTimeout(context.Background(), Timeout)
				defer cancel()
				status, err := src.ReadStatus(ctx)
				if err != nil {
					c.Err(err)
				} else if status == nil {
					c.Err(fmt.Errorf("status not available"))
				} else {
					sh.Print(c, status, status.String())
				}
			case interface {
				Status() <-chan *msgs.MotorStatus
			}:
				select {
				case status := <-src.Status():
					sh.Print(c, status, status.String())
				case <-time.After(Timeout):
					c.Err(fmt.Errorf("status timeout"))
				}
			default:
				c.Err(fmt.Errorf("status not supported"))
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&MoveCmd,
		&StopCmd,
		&PowerCmd,
		&ReadCmd,
		&StatusCmd,
	)
}
