package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/flga/vnes2/nes"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

// Button bit positions within the Console.Step bitmask, matching the
// Button iota order in nes/controller.go (A=bit0 .. Right=bit7).
var keyboardMapping1 = map[sdl.Keycode]nes.Button{
	sdl.K_a:      nes.A,
	sdl.K_z:      nes.B,
	sdl.K_RETURN: nes.Start,
	sdl.K_RSHIFT: nes.Select,
	sdl.K_UP:     nes.Up,
	sdl.K_DOWN:   nes.Down,
	sdl.K_LEFT:   nes.Left,
	sdl.K_RIGHT:  nes.Right,
}

var controllerMapping = map[uint8]nes.Button{
	sdl.CONTROLLER_BUTTON_A:          nes.A,
	sdl.CONTROLLER_BUTTON_B:          nes.B,
	sdl.CONTROLLER_BUTTON_START:      nes.Start,
	sdl.CONTROLLER_BUTTON_BACK:       nes.Select,
	sdl.CONTROLLER_BUTTON_DPAD_UP:    nes.Up,
	sdl.CONTROLLER_BUTTON_DPAD_DOWN:  nes.Down,
	sdl.CONTROLLER_BUTTON_DPAD_LEFT:  nes.Left,
	sdl.CONTROLLER_BUTTON_DPAD_RIGHT: nes.Right,
}

func loadCartridge(path string) (*nes.Cartridge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return nes.LoadINES(f)
}

func run(romPath string, trace bool, cpuprof, memprof string, savePath string) error {
	var out io.Writer
	if trace {
		out = os.Stderr
	}

	if err := sdl.Init(sdl.INIT_GAMECONTROLLER | sdl.INIT_JOYSTICK | sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("unable to init sdl: %s", err)
	}
	defer sdl.Quit()

	const zoom = 4
	window, err := sdl.CreateWindow("vnes2", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		256*zoom, 240*zoom, sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("unable to create window: %s", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %s", err)
	}
	defer renderer.Destroy()
	renderer.SetLogicalSize(256, 240)

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, 256, 240)
	if err != nil {
		return fmt.Errorf("unable to create texture: %s", err)
	}
	defer texture.Destroy()

	console := nes.NewConsole(out)

	if romPath != "" {
		cart, err := loadCartridge(romPath)
		if err != nil {
			return err
		}
		if err := console.Load(cart); err != nil {
			return err
		}
	}

	var controllers []*sdl.GameController

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigchan
		cancel()
	}()

	if cpuprof != "" {
		f, err := os.Create(cpuprof)
		if err != nil {
			return fmt.Errorf("could not create cpu profile: %s", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start cpu profile: %s", err)
		}
		defer pprof.StopCPUProfile()
	}
	if memprof != "" {
		f, err := os.Create(memprof)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %s", err)
		}
		defer f.Close()
		defer func() {
			runtime.GC()
			pprof.WriteHeapProfile(f)
		}()
	}

	paused := false
	var buttons1, buttons2 byte

	setBit := func(mask *byte, btn nes.Button, down bool) {
		if down {
			*mask |= 1 << uint(btn)
		} else {
			*mask &^= 1 << uint(btn)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
			switch evt := evt.(type) {
			case *sdl.QuitEvent:
				return nil

			case *sdl.ControllerDeviceEvent:
				for _, c := range controllers {
					c.Close()
				}
				controllers = controllers[:0]
				for i := 0; i < sdl.NumJoysticks(); i++ {
					if c := sdl.GameControllerOpen(i); c != nil {
						controllers = append(controllers, c)
					}
				}

			case *sdl.ControllerButtonEvent:
				if btn, ok := controllerMapping[evt.Button]; ok {
					setBit(&buttons2, btn, evt.State == sdl.PRESSED)
				}

			case *sdl.KeyboardEvent:
				if evt.Keysym.Sym == sdl.K_SPACE && evt.State == sdl.PRESSED && evt.Repeat == 0 {
					paused = !paused
					continue
				}
				if evt.Keysym.Sym == sdl.K_F5 && evt.State == sdl.PRESSED && evt.Repeat == 0 && savePath != "" {
					os.WriteFile(savePath, console.SaveState(), 0644)
					continue
				}
				if evt.Keysym.Sym == sdl.K_F7 && evt.State == sdl.PRESSED && evt.Repeat == 0 && savePath != "" {
					if data, err := os.ReadFile(savePath); err == nil {
						if err := console.LoadState(data); err != nil {
							fmt.Fprintln(os.Stderr, err)
						}
					}
					continue
				}

				if btn, ok := keyboardMapping1[evt.Keysym.Sym]; ok {
					setBit(&buttons1, btn, evt.State == sdl.PRESSED)
				}
			}
		}

		if !paused {
			console.Step(buttons1, buttons2, 1)
		}

		texture.Update(nil, console.Buffer(), 256*4)
		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		time.Sleep(time.Millisecond)
	}
}

func main() {
	trace := flag.Bool("trace", false, "print a disassembly trace of every instruction executed to stderr")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	savestate := flag.String("savestate", "", "path used by F5 (save) / F7 (load) for save states")

	flag.Parse()

	if err := run(flag.Arg(0), *trace, *cpuprofile, *memprofile, *savestate); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
