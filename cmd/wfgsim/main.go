// Command wfgsim runs the waveform generator engine on the register level
// simulator and drives it with the generator's command shell.
//
// Commands are read from standard input, or from -c separated by ';'. After
// every command the simulation advances by -cycles system clock cycles. With
// -wav the pins of both channels are sampled at -rate and written to a stereo
// 8 bit WAV file, channel A left and channel B right.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/tinygo-org/uwfg/monitor"
	"github.com/tinygo-org/uwfg/wfg"
	"github.com/tinygo-org/uwfg/wfg/sim"
)

const programName = "wfgsim"

type styles struct {
	banner lipgloss.Style
	prompt lipgloss.Style
	status lipgloss.Style
	err    lipgloss.Style
}

func newStyles() styles {
	return styles{
		banner: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(4)),
		prompt: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		status: lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(6)),
		err:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}

func main() {
	if err := launch(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "* error: %v\n", err)
		os.Exit(1)
	}
}

func launch(args []string, in *os.File, out io.Writer) error {
	var cycles uint64
	var wavPath string
	var rate int
	var script string
	var clock float64

	flgs := flag.NewFlagSet(programName, flag.ExitOnError)
	flgs.Uint64Var(&cycles, "cycles", 250_000, "system clock cycles to simulate after each command")
	flgs.StringVar(&wavPath, "wav", "", "write the pin output of both channels to this WAV file")
	flgs.IntVar(&rate, "rate", 1_000_000, "WAV capture sample rate in Hz")
	flgs.StringVar(&script, "c", "", "commands to run, separated by ';', instead of reading standard input")
	flgs.Float64Var(&clock, "clock", wfg.DefaultSystemClockHz, "simulated system clock in Hz")
	if err := flgs.Parse(args); err != nil {
		return err
	}
	if flgs.NArg() > 0 {
		return fmt.Errorf("too many arguments to %s", programName)
	}
	if rate <= 0 {
		return fmt.Errorf("capture rate must be positive")
	}

	cfg := wfg.DefaultConfig()
	cfg.SystemClockHz = clock
	if err := cfg.Validate(); err != nil {
		return err
	}
	bus := sim.New()
	bus.MaxHistory = 0
	eng := wfg.New(bus, cfg)
	eng.Init()

	var w io.WriteSeeker
	if wavPath != "" {
		f, err := os.Create(wavPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	capt := newCapture(bus, cfg, rate, w)

	s := &session{
		styles:  newStyles(),
		out:     out,
		bus:     bus,
		capture: capt,
		cycles:  cycles,
	}
	s.mon = monitor.New(eng, out)

	var err error
	if script != "" {
		err = s.runLines(strings.NewReader(strings.ReplaceAll(script, ";", "\n")), false)
	} else {
		interactive := term.IsTerminal(int(in.Fd()))
		if interactive {
			fmt.Fprintln(out, s.styles.banner.Render(" uWFG simulator "))
		}
		err = s.runLines(in, interactive)
	}
	if cerr := capt.close(); err == nil {
		err = cerr
	}
	if err == nil && w != nil {
		fmt.Fprintln(out, s.styles.status.Render(fmt.Sprintf("%d frames written to %s", capt.Samples, wavPath)))
	}
	return err
}

type session struct {
	styles  styles
	out     io.Writer
	mon     *monitor.Monitor
	bus     *sim.Bus
	capture *capture
	cycles  uint64
}

// runLines executes each line, then lets the simulation run.
func (s *session) runLines(r io.Reader, prompt bool) error {
	sc := bufio.NewScanner(r)
	for {
		if prompt {
			fmt.Fprint(s.out, s.styles.prompt.Render(monitor.Prompt))
		}
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}
		if err := s.mon.Exec(line); err != nil {
			if err != monitor.ErrUnknownCommand {
				fmt.Fprintln(s.out, s.styles.err.Render(err.Error()))
			}
			continue
		}
		if err := s.capture.run(s.cycles); err != nil {
			return err
		}
		s.report()
	}
}

func (s *session) report() {
	for ch := wfg.ChannelA; ch < wfg.NumChannels; ch++ {
		sm := s.bus.StateMachine(s.capture.sms[ch])
		fmt.Fprintln(s.out, s.styles.status.Render(fmt.Sprintf(
			"%s: pins 0x%02x, %d ticks, %d stalls, %d overflows",
			ch, sm.Pins, sm.Ticks, sm.Stalls, sm.Overflows)))
	}
	if n := s.bus.Faults(); n > 0 {
		fmt.Fprintln(s.out, s.styles.err.Render(fmt.Sprintf("%d bus faults", n)))
	}
}
