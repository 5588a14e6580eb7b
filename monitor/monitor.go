// Package monitor is the generator's line command shell. It reads commands
// from a serial console or any io.Reader and turns them into play requests.
package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/tinygo-org/uwfg/wave"
	"github.com/tinygo-org/uwfg/wfg"
)

// Player is the part of the wfg engine the shell drives.
type Player interface {
	Play(ch wfg.Channel, w wfg.Waveform)
	State(ch wfg.Channel) wfg.ChannelState
	Config() wfg.Config
}

// Prompt is printed before every command.
const Prompt = "Pico> "

const maxLine = 80

var (
	ErrUnknownCommand = errors.New("monitor: unknown command")
	ErrUsage          = errors.New("monitor: wrong number of arguments")
	ErrFrequency      = errors.New("monitor: invalid frequency")
)

type command struct {
	name   string
	syntax string
	help   string
	run    func(m *Monitor, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"si", "si {A|B} [freq]", "sine wave, 16 samples, freq in Hz (k, M suffix)", cmdTable(wave.Sine16)},
		{"sq", "sq {A|B} [freq]", "square wave, 16 samples", cmdTable(wave.Block16)},
		{"sa", "sa {A|B} [freq]", "sawtooth, 256 samples", cmdTable(wave.Saw256)},
		{"cl", "cl {A|B} [freq]", "replay current waveform at freq", cmdClock},
		{"wf", "wf {A|B} <sqr|tri|saw|sin|pul> <period> [duty rise fall]", "synthesize one period, e.g. 10us", cmdWave},
		{"st", "st", "show channel status", cmdStatus},
		{"help", "help", "show this text", cmdHelp},
	}
}

// Monitor executes shell commands against a Player, writing responses to an
// io.Writer.
type Monitor struct {
	p   Player
	out io.Writer
	// SampleRate is the rate wf synthesizes at. Keeping it at a quarter of
	// the system clock keeps the divider at 4 or above.
	SampleRate float64

	line []byte
}

// New returns a shell driving p.
func New(p Player, out io.Writer) *Monitor {
	return &Monitor{
		p:          p,
		out:        out,
		SampleRate: p.Config().SystemClockHz / 4,
	}
}

// Banner prints the start-up banner and the first prompt.
func (m *Monitor) Banner() {
	fmt.Fprint(m.out, "\n=============\n uWFG-Pico   \n=============\n")
	fmt.Fprint(m.out, Prompt)
}

// Exec runs one command line. An empty line is not an error. An unknown
// command prints the help text and returns ErrUnknownCommand.
func (m *Monitor) Exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	if len(args) == 0 {
		return nil
	}
	name := strings.ToLower(args[0])
	for i := range commands {
		if commands[i].name == name {
			return commands[i].run(m, args[1:])
		}
	}
	m.help()
	return ErrUnknownCommand
}

// Feed processes one character from a terminal: printable characters are
// echoed and collected, CR executes the collected line, LF is ignored.
func (m *Monitor) Feed(c byte) {
	switch {
	case c == '\r':
		fmt.Fprint(m.out, "\n")
		if len(m.line) > 0 {
			m.report(m.Exec(string(m.line)))
		}
		m.line = m.line[:0]
		fmt.Fprint(m.out, Prompt)
	case c == '\n':
	case c == 0x08 || c == 0x7f:
		if len(m.line) > 0 {
			m.line = m.line[:len(m.line)-1]
			fmt.Fprint(m.out, "\b \b")
		}
	case c < ' ' || c >= 0x80:
	default:
		if len(m.line) < maxLine {
			m.line = append(m.line, c)
			m.out.Write([]byte{c})
		}
	}
}

// Run executes every line read from r until EOF. Command errors are printed
// and do not stop the loop. If prompt is set, Prompt is printed before each
// line.
func (m *Monitor) Run(r io.Reader, prompt bool) error {
	s := bufio.NewScanner(r)
	for {
		if prompt {
			fmt.Fprint(m.out, Prompt)
		}
		if !s.Scan() {
			return s.Err()
		}
		m.report(m.Exec(s.Text()))
	}
}

func (m *Monitor) report(err error) {
	if err != nil && err != ErrUnknownCommand {
		fmt.Fprintf(m.out, "error: %v\n", err)
	}
}

func (m *Monitor) help() {
	for _, c := range commands {
		fmt.Fprintf(m.out, "%s\n   %s\n", c.syntax, c.help)
	}
}

// play range checks a request before handing it to the engine, which would
// otherwise panic.
func (m *Monitor) play(ch wfg.Channel, w wfg.Waveform) error {
	if err := wfg.Validate(ch, w); err != nil {
		return err
	}
	m.p.Play(ch, w)
	return nil
}

// channelAndFreq parses "{A|B} [freq]". Without a frequency the channel's
// current one is kept.
func (m *Monitor) channelAndFreq(args []string) (wfg.Channel, float64, error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, 0, ErrUsage
	}
	ch, err := wfg.ParseChannel(args[0])
	if err != nil {
		return 0, 0, err
	}
	freq := m.p.State(ch).Frequency
	if len(args) == 2 {
		if freq, err = ParseFrequency(args[1]); err != nil {
			return 0, 0, err
		}
	}
	return ch, freq, nil
}

func cmdTable(table []byte) func(m *Monitor, args []string) error {
	return func(m *Monitor, args []string) error {
		ch, freq, err := m.channelAndFreq(args)
		if err != nil {
			return err
		}
		return m.play(ch, wfg.Waveform{Samples: table, Frequency: freq})
	}
}

func cmdClock(m *Monitor, args []string) error {
	ch, freq, err := m.channelAndFreq(args)
	if err != nil {
		return err
	}
	return m.play(ch, wfg.Waveform{Samples: m.p.State(ch).Buffer, Frequency: freq})
}

func cmdWave(m *Monitor, args []string) error {
	if len(args) != 3 && len(args) != 6 {
		return ErrUsage
	}
	ch, err := wfg.ParseChannel(args[0])
	if err != nil {
		return err
	}
	p := wave.Params{Duty: 50, Rise: 1, Fall: 1}
	if p.Shape, err = wave.ParseShape(args[1]); err != nil {
		return err
	}
	if p.Period, err = time.ParseDuration(args[2]); err != nil {
		return fmt.Errorf("monitor: period: %w", err)
	}
	if len(args) == 6 {
		for i, dst := range []*int{&p.Duty, &p.Rise, &p.Fall} {
			if *dst, err = strconv.Atoi(args[3+i]); err != nil {
				return fmt.Errorf("monitor: %s: %w", [...]string{"duty", "rise", "fall"}[i], err)
			}
		}
	}
	w, err := wave.Synthesize(p, m.SampleRate)
	if err != nil {
		return err
	}
	return m.play(ch, w)
}

func cmdStatus(m *Monitor, args []string) error {
	clk := m.p.Config().SystemClockHz
	for ch := wfg.ChannelA; ch < wfg.NumChannels; ch++ {
		st := m.p.State(ch)
		fmt.Fprintf(m.out, "%s: %d samples, %s, div %.4f, out %s, %s\n",
			ch, st.Length, FormatFrequency(st.Frequency), st.Divider.Float(),
			FormatFrequency(wfg.EffectiveFrequency(clk, st.Divider, st.Length)), st.Ring)
	}
	return nil
}

func cmdHelp(m *Monitor, args []string) error {
	m.help()
	return nil
}

// ParseFrequency parses a positive frequency in Hz with an optional k or M
// suffix, e.g. "440", "2.5k", "1M".
func ParseFrequency(s string) (float64, error) {
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult, s = 1e3, s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		mult, s = 1e6, s[:len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !(f > 0) {
		return 0, ErrFrequency
	}
	return f * mult, nil
}

// FormatFrequency prints f with an SI prefix.
func FormatFrequency(f float64) string {
	switch {
	case f >= 1e6:
		return strconv.FormatFloat(f/1e6, 'g', 7, 64) + " MHz"
	case f >= 1e3:
		return strconv.FormatFloat(f/1e3, 'g', 7, 64) + " kHz"
	}
	return strconv.FormatFloat(f, 'g', 7, 64) + " Hz"
}
