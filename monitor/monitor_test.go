package monitor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tinygo-org/uwfg/wave"
	"github.com/tinygo-org/uwfg/wfg"
	"github.com/tinygo-org/uwfg/wfg/sim"
)

type play struct {
	ch wfg.Channel
	w  wfg.Waveform
}

// recorder wraps a real engine on the simulator and logs every Play.
type recorder struct {
	*wfg.Engine
	plays []play
}

func (r *recorder) Play(ch wfg.Channel, w wfg.Waveform) {
	r.plays = append(r.plays, play{ch, w})
	r.Engine.Play(ch, w)
}

func newMonitor() (*Monitor, *recorder, *bytes.Buffer) {
	e := wfg.New(sim.New(), wfg.DefaultConfig())
	e.Init()
	r := &recorder{Engine: e}
	var out bytes.Buffer
	return New(r, &out), r, &out
}

func TestTableCommands(t *testing.T) {
	for _, tc := range []struct {
		line  string
		ch    wfg.Channel
		table []byte
		freq  float64
	}{
		{"si A 1000", wfg.ChannelA, wave.Sine16, 1000},
		{"si b 2.5k", wfg.ChannelB, wave.Sine16, 2500},
		{"sq B 1M", wfg.ChannelB, wave.Block16, 1e6},
		{"SA a 50", wfg.ChannelA, wave.Saw256, 50},
		{"sa A", wfg.ChannelA, wave.Saw256, 1e6}, // keeps the boot frequency
	} {
		m, r, _ := newMonitor()
		if err := m.Exec(tc.line); err != nil {
			t.Errorf("%q: %v", tc.line, err)
			continue
		}
		if len(r.plays) != 1 {
			t.Errorf("%q: %d plays", tc.line, len(r.plays))
			continue
		}
		p := r.plays[0]
		if p.ch != tc.ch || &p.w.Samples[0] != &tc.table[0] || p.w.Frequency != tc.freq {
			t.Errorf("%q: played ch %s len %d freq %v", tc.line, p.ch, len(p.w.Samples), p.w.Frequency)
		}
	}
}

func TestClockCommand(t *testing.T) {
	m, r, _ := newMonitor()
	if err := m.Exec("sa B 100"); err != nil {
		t.Fatal(err)
	}
	if err := m.Exec("cl B 200"); err != nil {
		t.Fatal(err)
	}
	st := r.State(wfg.ChannelB)
	if &st.Buffer[0] != &wave.Saw256[0] || st.Frequency != 200 {
		t.Errorf("cl did not replay the sawtooth at 200 Hz: len %d freq %v", st.Length, st.Frequency)
	}
	if r.State(wfg.ChannelA).Frequency != 1e6 {
		t.Error("cl B touched channel A")
	}
}

func TestWaveCommand(t *testing.T) {
	m, r, _ := newMonitor()
	if err := m.Exec("wf A pul 10us 30 5 5"); err != nil {
		t.Fatal(err)
	}
	p := r.plays[0]
	if p.ch != wfg.ChannelA || len(p.w.Samples) != 312 {
		t.Errorf("played %s with %d samples", p.ch, len(p.w.Samples))
	}
	want := wfg.NewBuffer(312)
	wave.Fill(want, wave.Params{Shape: wave.Pulse, Duty: 30, Rise: 5, Fall: 5})
	if !bytes.Equal(p.w.Samples, want) {
		t.Error("pulse samples differ from wave.Fill")
	}

	if err := m.Exec("wf B sin 1ms"); err != nil {
		t.Fatal(err)
	}
	if st := r.State(wfg.ChannelB); st.Length != wave.MaxSamples {
		t.Errorf("1ms sine uses %d samples", st.Length)
	}
}

func TestCommandErrors(t *testing.T) {
	for _, tc := range []struct {
		line string
		want error
	}{
		{"si", ErrUsage},
		{"si A 1 2", ErrUsage},
		{"si C 100", wfg.ErrChannel},
		{"si A fast", ErrFrequency},
		{"si A -5", ErrFrequency},
		{"si A 0", ErrFrequency},
		{"si A Inf", wfg.ErrFrequency},
		{"wf A sqr", ErrUsage},
		{"wf A noise 1ms", wave.ErrShape},
		{"wf A pul 1ms 120 0 0", wave.ErrPulse},
		{"wf A sqr -1ms", wave.ErrPeriod},
		{"xx", ErrUnknownCommand},
	} {
		m, r, _ := newMonitor()
		if err := m.Exec(tc.line); !errors.Is(err, tc.want) {
			t.Errorf("%q: error %v, want %v", tc.line, err, tc.want)
		}
		if len(r.plays) != 0 {
			t.Errorf("%q: played despite error", tc.line)
		}
	}
	m, _, _ := newMonitor()
	if err := m.Exec(`si "A`); err == nil {
		t.Error("unterminated quote accepted")
	}
	if err := m.Exec("   "); err != nil {
		t.Errorf("blank line: %v", err)
	}
}

func TestUnknownPrintsHelp(t *testing.T) {
	m, _, out := newMonitor()
	m.Exec("bogus")
	for _, c := range commands {
		if !strings.Contains(out.String(), c.syntax) {
			t.Errorf("help lacks %q", c.syntax)
		}
	}
}

func TestStatus(t *testing.T) {
	m, _, out := newMonitor()
	m.Exec("si B 1k")
	out.Reset()
	if err := m.Exec("st"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("status output %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "A: 16 samples, 1 MHz, div 7.8125") || !strings.HasSuffix(lines[0], "streaming") {
		t.Errorf("status A %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "B: 16 samples, 1 kHz, div 7812.5000") {
		t.Errorf("status B %q", lines[1])
	}
}

func TestFeed(t *testing.T) {
	m, r, out := newMonitor()
	for _, c := range []byte("sq A 1x\x7f0\r\n") {
		m.Feed(c)
	}
	if len(r.plays) != 1 || r.plays[0].w.Frequency != 10 {
		t.Fatalf("plays %+v", r.plays)
	}
	if !strings.HasSuffix(out.String(), Prompt) || !strings.HasPrefix(out.String(), "sq A 1x\b \b0\n") {
		t.Errorf("echo %q", out.String())
	}

	out.Reset()
	m.Feed('\r')
	if out.String() != "\n"+Prompt {
		t.Errorf("empty line output %q", out.String())
	}

	for i := 0; i < 2*maxLine; i++ {
		m.Feed('x')
	}
	if len(m.line) != maxLine {
		t.Errorf("line grew to %d", len(m.line))
	}
}

func TestRun(t *testing.T) {
	m, r, out := newMonitor()
	in := strings.NewReader("si A 100\nsi Q\n\nsq B 2k\n")
	if err := m.Run(in, true); err != nil {
		t.Fatal(err)
	}
	if len(r.plays) != 2 {
		t.Errorf("%d plays", len(r.plays))
	}
	if !strings.Contains(out.String(), "error: "+wfg.ErrChannel.Error()) {
		t.Errorf("channel error not reported: %q", out.String())
	}
	if n := strings.Count(out.String(), Prompt); n != 5 {
		t.Errorf("%d prompts", n)
	}
}

func TestParseFrequency(t *testing.T) {
	for in, want := range map[string]float64{"1": 1, "440": 440, "2.5k": 2500, "3K": 3000, "1.25M": 1.25e6, "1e3": 1000} {
		got, err := ParseFrequency(in)
		if err != nil || got != want {
			t.Errorf("ParseFrequency(%q) = %v, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "k", "M", "-1k", "1m", "NaN"} {
		if _, err := ParseFrequency(in); err == nil {
			t.Errorf("ParseFrequency(%q) accepted", in)
		}
	}
}

func TestFormatFrequency(t *testing.T) {
	for f, want := range map[float64]string{1e6: "1 MHz", 31250: "31.25 kHz", 50: "50 Hz", 2500: "2.5 kHz"} {
		if got := FormatFrequency(f); got != want {
			t.Errorf("FormatFrequency(%v) = %q, want %q", f, got, want)
		}
	}
}
