// Package validate checks Note Hunt configuration files before they are
// served. Beyond the engine's own validation it checks:
//   - Unknown JSON fields (likely typos)
//   - Referenced images, player sprite and music exist in the assets directory
//   - Duplicate images and messages
//   - Route length and minimum play time for seeded or pinned note layouts
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wricardo/notehunt/game/engine"
)

// Result captures the outcome of validating a single file. Info holds the
// summary lines of a valid file.
type Result struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) info(format string, args ...interface{}) {
	r.Info = append(r.Info, "✓ "+fmt.Sprintf(format, args...))
}

// Validator checks configurations, optionally against an asset tree
type Validator struct {
	// Assets is searched for images and audio; nil skips asset checks
	Assets fs.FS
}

// File validates a configuration file on disk
func (v *Validator) File(filePath string) Result {
	data, err := os.ReadFile(filePath)
	if err != nil {
		r := Result{File: filepath.Base(filePath), Valid: true}
		r.fail("Failed to read file: %v", err)
		return r
	}
	return v.Data(filepath.Base(filePath), data)
}

// FS validates every *.json file at the top of fsys, sorted by name
func (v *Validator) FS(fsys fs.FS) ([]Result, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			r := Result{File: name, Valid: true}
			r.fail("Failed to read file: %v", err)
			results = append(results, r)
			continue
		}
		results = append(results, v.Data(name, data))
	}
	return results, nil
}

// Data validates raw configuration JSON
func (v *Validator) Data(name string, data []byte) Result {
	result := Result{File: name, Valid: true}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	strict := json.NewDecoder(bytes.NewReader(data))
	strict.DisallowUnknownFields()
	var probe engine.GameConfig
	if err := strict.Decode(&probe); err != nil {
		result.warn("%v", err)
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	checkDuplicates(&result, "image", config.Images)
	checkDuplicates(&result, "message", config.Messages)

	if v.Assets != nil {
		for i, img := range config.Images {
			if !exists(v.Assets, img) {
				result.fail("images[%d] %q not found in assets", i, img)
			}
		}
		// The clients fall back to drawn shapes and silence for these
		if config.PlayerImage != "" && !exists(v.Assets, config.PlayerImage) {
			result.warn("player_image %q not found in assets", config.PlayerImage)
		}
		if config.Music != "" && !exists(v.Assets, config.Music) {
			result.warn("music %q not found in assets", config.Music)
		}
	}

	if result.Valid {
		summarize(&result, &config)
	}
	return result
}

func exists(fsys fs.FS, name string) bool {
	_, err := fs.Stat(fsys, name)
	return err == nil
}

func checkDuplicates(result *Result, kind string, values []string) {
	seen := make(map[string]int, len(values))
	for i, v := range values {
		if first, ok := seen[v]; ok {
			result.warn("%s %d repeats %s %d (%q)", kind, i+1, kind, first+1, v)
			continue
		}
		seen[v] = i
	}
}

// Analysis describes how long a layout takes to play through
type Analysis struct {
	// Positions in collection order
	Notes []engine.Position
	// Moves is the shortest total route from the start through every note
	Moves int
	// Longest is the longest single leg between consecutive notes
	Longest int
	// FramesPerCell is how many frames one slide takes
	FramesPerCell int
	// MinPlayTime assumes no wasted moves and instant popup dismissal
	MinPlayTime time.Duration
}

// Analyze computes route statistics. The second return is false when notes are
// placed randomly per session, in which case the analysis only holds for seed.
func Analyze(config *engine.GameConfig, seed uint64) (Analysis, bool) {
	fixed := len(config.NotePositions) > 0 || config.Seed != 0
	if config.Seed != 0 {
		seed = config.Seed
	}

	state := engine.InitGameStateFromConfig(config, seed)
	a := Analysis{
		FramesPerCell: int(math.Ceil(float64(config.TileSize) / float64(config.SlideSpeed))),
	}

	from := config.PlayerStart
	for _, note := range state.Notes {
		pos := note.Pos()
		leg := engine.ManhattanDistance(from, pos)
		a.Moves += leg
		if leg > a.Longest {
			a.Longest = leg
		}
		a.Notes = append(a.Notes, pos)
		from = pos
	}

	a.MinPlayTime = time.Duration(a.Moves*a.FramesPerCell)*engine.FrameTime +
		time.Duration(len(state.Notes))*config.MessageDelay()
	return a, fixed
}

func summarize(result *Result, config *engine.GameConfig) {
	result.info("Name: %s", config.Name)
	result.info("Grid: %dx%d, tile %dpx", config.GridSize, config.GridSize, config.TileSize)
	result.info("Notes: %d", config.NoteCount)
	result.info("Popup: photo %dms, message %dms, fade %dms", config.PhotoDelayMS, config.MessageDelayMS, config.FadeMS)

	a, fixed := Analyze(config, 1)
	result.info("Slide: %d frames per cell", a.FramesPerCell)
	if fixed {
		result.info("Route: %d moves, longest leg %d", a.Moves, a.Longest)
		result.info("Minimum play time: %s", a.MinPlayTime.Round(100*time.Millisecond))
	} else {
		result.info("Route: random placement per session")
	}
}

// ErrInvalid is returned by Report when any result is invalid
var ErrInvalid = errors.New("some configurations have errors")

// Report prints results and returns ErrInvalid if any failed
func Report(w io.Writer, results []Result) error {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
		return nil
	}
	fmt.Fprintln(w, "❌ Some configurations have errors")
	return ErrInvalid
}
