// Command xdgshelldemo walks a Shell through a handful of the protocol
// exchanges xdgshell implements, against the in-memory transport fakes,
// and prints what it did. There is no real compositor or client here;
// it exists to exercise the package the way cmd/ctxmenu exercises the
// ctxmenu package, one call at a time instead of behind a test runner.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	xdgshell "github.com/friedelschoen/xdgshell"
	"github.com/friedelschoen/xdgshell/transport"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	loop := transport.NewFakeEventLoop()
	serials := &transport.AtomicSerialSource{}
	shell := xdgshell.NewShell(loop, serials, xdgshell.ShellConfig{Logger: logger})

	shell.SetSignals(xdgshell.ShellSignals{
		OnNewSurface: func(s *xdgshell.Surface) {
			fmt.Printf("new_surface: id=%d role=%s\n", s.ID(), s.Role())
		},
	})

	wmBase := &transport.FakeResource{}
	client := shell.NewClient(wmBase, xdgshell.ClientSignals{
		OnSendPing: func(serial transport.Serial) {
			fmt.Printf("xdg_wm_base.ping(%d)\n", serial)
		},
	})

	base := transport.NewFakeBaseSurface()
	xdgRes := &transport.FakeResource{}
	surface, err := client.CreateSurface(base, xdgRes)
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	surface.SetSignals(xdgshell.SurfaceSignals{
		OnSendConfigure: func(serial transport.Serial) {
			fmt.Printf("xdg_surface.configure(%d)\n", serial)
		},
	})

	toplevel, err := surface.GetToplevel(xdgshell.ToplevelSignals{
		OnSendConfigure: func(w, h int32, states []uint32) {
			fmt.Printf("xdg_toplevel.configure(%d,%d,%v)\n", w, h, states)
		},
		OnSendClose: func() {
			fmt.Println("xdg_toplevel.close()")
		},
	})
	if err != nil {
		return fmt.Errorf("get_toplevel: %w", err)
	}
	toplevel.SetTitle("demo window")

	fmt.Println("--- initial commit ---")
	base.Commit(false)
	loop.RunIdle()

	lastSerial := surface.SetSize(800, 600)
	fmt.Println("--- compositor proposes 800x600 ---")
	loop.RunIdle()

	if err := surface.AckConfigure(lastSerial); err != nil {
		return fmt.Errorf("ack_configure: %w", err)
	}
	fmt.Println("--- client acks and attaches a buffer ---")
	base.Commit(true)

	fmt.Println("--- ping/pong ---")
	pingSerial := client.Ping()
	client.Pong(pingSerial)

	fmt.Println("--- close request ---")
	surface.SendClose()

	base.Destroy()
	return nil
}
