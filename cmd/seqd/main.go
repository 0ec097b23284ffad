// Command seqd is the entry point: a cobra CLI surface wrapping a
// minimal bubbletea program that drives the playback scheduler's tick
// loop and forwards keypresses to the modal input controller.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/loopbyte/seqtrack/internal/app"
	"github.com/loopbyte/seqtrack/internal/audio/oscadapter"
	"github.com/loopbyte/seqtrack/internal/modalinput"
	"github.com/loopbyte/seqtrack/internal/playback"
)

var (
	oscPort        int
	sampleRoot     string
	autosaveWindow time.Duration
	numChannels    int
)

func main() {
	root := &cobra.Command{
		Use:   "seqd [project-path]",
		Short: "terminal step-sequencer core",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().IntVar(&oscPort, "osc-port", 57120, "OSC port for the audio backend")
	root.Flags().StringVar(&sampleRoot, "sample-root", ".", "directory the filesystem collaborator scans for samples")
	root.Flags().DurationVar(&autosaveWindow, "autosave-window", 500*time.Millisecond, "autosave quiescence window")
	root.Flags().IntVar(&numChannels, "channels", 8, "channel count for a newly created project")

	if err := root.Execute(); err != nil {
		log.SetOutput(os.Stderr)
		log.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	projectPath := args[0]

	sink := oscadapter.New("localhost", oscPort)
	a := app.New(numChannels, sink, projectPath)
	a.SampleRoot = sampleRoot
	a.SetAutosaveWindow(autosaveWindow)

	if _, err := os.Stat(projectPath); err == nil {
		if err := a.Load(); err != nil {
			return fmt.Errorf("load project %s: %w", projectPath, err)
		}
	}

	tm := &trackerModel{app: a}
	p := tea.NewProgram(tm)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}

	if err := a.Save(); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	return nil
}

type tickMsg time.Time

func scheduleTick(s *playback.Scheduler) tea.Cmd {
	return tea.Tick(s.Period(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// trackerModel is the thin bubbletea wrapper around the App composition
// root. It does not render a full grid (terminal rendering is out of
// scope); it shows a one-line transport/status readout, keeping tempo
// ticks (tickMsg) separate from any future UI redraw ticks.
type trackerModel struct {
	app *app.App
}

func (tm *trackerModel) Init() tea.Cmd {
	return nil
}

func (tm *trackerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return tm, tea.Quit
		}
		if msg.Type == tea.KeyTab {
			tm.app.CycleFocus()
			return tm, nil
		}
		if msg.String() == " " && tm.app.Focus == app.FocusSteps {
			return tm, tm.togglePlay()
		}
		tm.app.FocusedController().HandleKey(toModalKey(msg))
		return tm, nil

	case tickMsg:
		if !tm.app.Scheduler.Playing {
			return tm, nil
		}
		tm.app.Scheduler.Tick()
		return tm, scheduleTick(tm.app.Scheduler)
	}
	return tm, nil
}

func (tm *trackerModel) togglePlay() tea.Cmd {
	s := tm.app.Scheduler
	if s.Playing {
		s.Stop()
		return nil
	}
	s.Start(playback.ModePattern)
	return scheduleTick(s)
}

func (tm *trackerModel) View() string {
	status := "stopped"
	if tm.app.Scheduler.Playing {
		status = "playing"
	}
	line := fmt.Sprintf("%s  bpm=%.0f  step=%d  pattern=%d  note=%s  focus=%s",
		status, tm.app.Scheduler.BPM, tm.app.Scheduler.PlayheadStep, tm.app.Model.CurrentPatternID,
		tm.app.CursorNoteName(), focusName(tm.app.Focus))
	return lipgloss.NewStyle().Bold(true).Render(line) + "\n"
}

func focusName(f app.Focus) string {
	switch f {
	case app.FocusPianoRoll:
		return "piano-roll"
	case app.FocusArrangement:
		return "arrangement"
	default:
		return "steps"
	}
}

// toModalKey translates a bubbletea key message into the controller's
// transport-agnostic Key.
func toModalKey(msg tea.KeyMsg) modalinput.Key {
	switch msg.Type {
	case tea.KeyEsc:
		return modalinput.Key{Name: "escape"}
	case tea.KeyUp:
		return modalinput.Key{Name: "up"}
	case tea.KeyDown:
		return modalinput.Key{Name: "down"}
	case tea.KeyLeft:
		return modalinput.Key{Name: "left"}
	case tea.KeyRight:
		return modalinput.Key{Name: "right"}
	case tea.KeyCtrlO:
		return modalinput.Key{Ctrl: true, Rune: 'o'}
	case tea.KeyCtrlI:
		return modalinput.Key{Ctrl: true, Rune: 'i'}
	case tea.KeyCtrlV:
		return modalinput.Key{Ctrl: true, Rune: 'v'}
	}
	runes := msg.Runes
	if len(runes) == 0 {
		return modalinput.Key{}
	}
	return modalinput.Key{Rune: runes[0]}
}
