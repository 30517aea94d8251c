package main

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/osa030/kidbox/internal/app/input"
	"github.com/osa030/kidbox/internal/app/navigator"
	"github.com/osa030/kidbox/internal/app/playback"
	"github.com/osa030/kidbox/internal/domain/button"
	"github.com/osa030/kidbox/internal/domain/playlist"
	"github.com/osa030/kidbox/internal/domain/track"
	"github.com/osa030/kidbox/internal/infra/board"
	"github.com/osa030/kidbox/internal/infra/config"
)

// buttonPins converts the configured pin map.
func buttonPins(cfg *config.Config) []button.Pin {
	pins := make([]button.Pin, len(cfg.Input.Pins))
	for i, p := range cfg.Input.Pins {
		pins[i] = button.Pin(p)
	}
	return pins
}

// volumeTable converts the configured table. Config validation guarantees 16 entries in 0-255.
func volumeTable(cfg *config.Config) input.VolumeTable {
	var t input.VolumeTable
	for i := range t {
		t[i] = input.Volume(cfg.Input.VolumeTable[i])
	}
	return t
}

func samplerConfig(cfg *config.Config) input.Config {
	return input.Config{
		Pins:       buttonPins(cfg),
		Volume:     volumeTable(cfg),
		AnalogBits: cfg.Input.AnalogBits,
	}
}

func navigatorConfig(cfg *config.Config) navigator.Config {
	return navigator.Config{
		Back:    button.Index(cfg.Navigation.BackButton),
		Forward: button.Index(cfg.Navigation.ForwardButton),
		Default: track.Request{
			Collection: cfg.Navigation.DefaultCollection,
			Item:       cfg.Navigation.DefaultItem,
		},
		CollectionCount: cfg.Navigation.CollectionCount,
	}
}

// newController wires the sampler and navigator to the engine.
func newController(cfg *config.Config, b board.Board, engine playback.Engine) *playback.Controller {
	sampler := input.NewSampler(samplerConfig(cfg), b, b)
	nav := navigator.New(navigatorConfig(cfg))
	return playback.NewController(playback.Config{
		Extension:    cfg.Audio.Extension,
		FailureLimit: cfg.Navigation.CollectionCount,
		RetryDelay:   cfg.Audio.RetryDelay,
	}, sampler, nav, engine)
}

// printButtons prints the button map.
func printButtons(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Buttons:")
	for _, b := range button.FromPins(buttonPins(cfg)) {
		role := fmt.Sprintf("collection %d", b.Index)
		switch int(b.Index) {
		case cfg.Navigation.BackButton:
			role = "back"
		case cfg.Navigation.ForwardButton:
			role = "forward"
		}
		if !cfg.IsNavigationButton(int(b.Index)) && int(b.Index) >= cfg.Navigation.CollectionCount {
			role += " (beyond collection_count)"
		}
		fmt.Fprintf(w, "  %2d  GPIO%-3d  %s\n", b.Index, b.Pin, role)
	}
	fmt.Fprintf(w, "Start: %s  Collections: %d\n", navigatorConfig(cfg).Default, cfg.Navigation.CollectionCount)
}

// checkMedia scans the media layout and reports where it disagrees with the
// navigation settings.
func checkMedia(fsys fs.FS, cfg *config.Config) ([]playlist.Collection, []string, error) {
	collections, err := playlist.Scan(fsys, cfg.Audio.Extension)
	if err != nil {
		return nil, nil, err
	}

	found := make(map[int]bool, len(collections))
	warnings := make([]string, 0)
	for i := range collections {
		c := &collections[i]
		found[c.Index] = true
		if c.Index >= cfg.Navigation.CollectionCount {
			warnings = append(warnings, fmt.Sprintf("collection %d is beyond collection_count (%d)", c.Index, cfg.Navigation.CollectionCount))
		}
		if len(c.Items) == 0 {
			warnings = append(warnings, fmt.Sprintf("collection %d has no items", c.Index))
		} else if !c.Contiguous() {
			warnings = append(warnings, fmt.Sprintf("collection %d has gaps in its item numbering", c.Index))
		}
	}
	for i := 0; i < cfg.Navigation.CollectionCount; i++ {
		if !found[i] {
			warnings = append(warnings, fmt.Sprintf("collection %d is missing", i))
		}
	}
	return collections, warnings, nil
}

// printMedia prints the scanned collections and warnings.
func printMedia(w io.Writer, collections []playlist.Collection, warnings []string) {
	fmt.Fprintln(w, "Collections:")
	for _, c := range collections {
		fmt.Fprintf(w, "  %2d  %d items\n", c.Index, len(c.Items))
	}
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
