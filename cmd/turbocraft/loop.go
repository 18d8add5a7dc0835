package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"turbocraft/internal/config"
	"turbocraft/internal/game"
	"turbocraft/internal/input"
	"turbocraft/internal/inventory"
	"turbocraft/internal/registry"
	"turbocraft/internal/render"

	"github.com/go-gl/mathgl/mgl32"
)

const helpText = `commands:
  start                 start a session from the menu
  key <name>            press and release a key (1-9, g, k, l, i, o, j, escape, ...)
  click left|right      destroy or place at the block under the crosshair
  scroll up|down        cycle the selected slot
  look <yaw> <pitch>    turn the camera by degrees
  move <dx> <dy> <dz>   move the observer
  tick [n]              run n update ticks now
  stats                 print session state
  blocks                list the palette with stock counts
  quit                  exit`

// loop owns the session: every call into it happens on the goroutine running
// run. Console lines arrive over a channel from a reader goroutine.
type loop struct {
	cfg     *config.Config
	session *game.Session
	engine  *render.Headless
	input   *input.InputManager
	limiter *game.TickLimiter
	out     io.Writer
	log     *slog.Logger
}

func newLoop(cfg *config.Config, s *game.Session, e *render.Headless, im *input.InputManager, out io.Writer, log *slog.Logger) *loop {
	return &loop{
		cfg:     cfg,
		session: s,
		engine:  e,
		input:   im,
		limiter: game.NewTickLimiter(cfg.TickRate),
		out:     out,
		log:     log,
	}
}

// run ticks at the configured rate and executes console commands until quit,
// end of input or ctx is done.
func (l *loop) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
		close(lines)
	}()

	fmt.Fprintln(l.out, "turbocraft: type 'start' to play, 'help' for commands")
	timer := time.NewTimer(l.limiter.Next(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if l.exec(line) {
				return nil
			}
		case now := <-timer.C:
			l.tick(now)
			timer.Reset(l.limiter.Next(time.Now()))
		}
	}
}

func (l *loop) tick(now time.Time) {
	l.engine.Step()
	l.session.Tick(now)
	l.input.PostUpdate()
}

// exec runs one console command and reports whether the program should exit.
func (l *loop) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	args := fields[1:]

	switch fields[0] {
	case "help", "?":
		fmt.Fprintln(l.out, helpText)
	case "start":
		return l.dispatch(input.ActionStart)
	case "quit", "exit":
		return true
	case "key":
		if len(args) != 1 {
			fmt.Fprintln(l.out, "usage: key <name>")
			return false
		}
		return l.press(args[0])
	case "click":
		switch arg(args, 0) {
		case "left":
			return l.press(input.MouseLeft)
		case "right":
			return l.press(input.MouseRight)
		}
		fmt.Fprintln(l.out, "usage: click left|right")
	case "scroll":
		switch arg(args, 0) {
		case "up":
			return l.press(input.WheelUp)
		case "down":
			return l.press(input.WheelDown)
		}
		fmt.Fprintln(l.out, "usage: scroll up|down")
	case "look":
		v, err := floats(args, 2)
		if err != nil {
			fmt.Fprintln(l.out, "usage: look <yaw> <pitch>")
			return false
		}
		l.engine.Look(v[0], v[1])
	case "move":
		v, err := floats(args, 3)
		if err != nil {
			fmt.Fprintln(l.out, "usage: move <dx> <dy> <dz>")
			return false
		}
		l.engine.Move(mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])})
	case "tick":
		n := 1
		if len(args) > 0 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil || n < 1 {
				fmt.Fprintln(l.out, "usage: tick [n]")
				return false
			}
		}
		for range n {
			l.tick(time.Now())
		}
	case "stats":
		l.printStats()
	case "blocks":
		l.printBlocks()
	default:
		fmt.Fprintf(l.out, "unknown command %q, try 'help'\n", fields[0])
	}
	return false
}

// press feeds a key through the bindings and dispatches every action it
// fires.
func (l *loop) press(key string) bool {
	actions := l.input.Tap(key)
	if len(actions) == 0 {
		fmt.Fprintf(l.out, "key %q is not bound\n", key)
		return false
	}
	for _, a := range actions {
		if l.dispatch(a) {
			return true
		}
	}
	return false
}

func (l *loop) dispatch(a input.Action) bool {
	ev := game.Event{Action: a}
	if a == input.ActionPrimary || a == input.ActionSecondary {
		ev.Hit = l.engine.Raycast(l.cfg.ReachDistance)
	}
	d := l.session.Handle(ev, time.Now())

	switch {
	case d.Err != nil:
		fmt.Fprintf(l.out, "%s: %v\n", a, d.Err)
	case d.Edit != game.EditNone:
		fmt.Fprintf(l.out, "%s: %s %v\n", a, d.Edit, d.Target)
	default:
		fmt.Fprintf(l.out, "%s: state=%s mode=%s slot=%d\n", a, d.State, d.Mode, d.Slot+1)
	}
	return d.Quit
}

func (l *loop) printStats() {
	s := l.session
	inv := s.Inventory()
	pos := l.engine.ObserverPosition()
	held := game.SelectedType(inv.CurrentItem)
	fmt.Fprintf(l.out, "state=%s mode=%s slot=%d block=%s texture=%s count=%d blocks=%d chunks=%d entities=%d pos=(%.2f,%.2f,%.2f)\n",
		s.State(), s.Mode(), inv.CurrentItem+1, registry.Name(held), registry.Texture(held), inv.Count(inv.CurrentItem),
		s.World().Len(), s.Streamer().LoadedCount(), l.engine.EntityCount(),
		pos.X(), pos.Y(), pos.Z())
}

func (l *loop) printBlocks() {
	inv := l.session.Inventory()
	for slot := range inventory.Size {
		t := game.SelectedType(slot)
		mark := " "
		if slot == inv.CurrentItem {
			mark = "*"
		}
		fmt.Fprintf(l.out, "%s%2d %-14s %-22s %d\n", mark, t, registry.Name(t), registry.Texture(t), inv.Count(slot))
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func floats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
