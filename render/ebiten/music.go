package ebiten

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
)

// SampleRate of the audio context used for background music
const SampleRate = 44100

// Music loops an mp3 track in the background
type Music struct {
	player *audio.Player
}

// LoadMusic decodes ref from dir inside fsys and prepares it to loop forever
func LoadMusic(ctx *audio.Context, fsys fs.FS, dir, ref string) (*Music, error) {
	data, err := fs.ReadFile(fsys, path.Join(dir, ref))
	if err != nil {
		return nil, err
	}

	stream, err := mp3.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}

	loop := audio.NewInfiniteLoop(stream, stream.Length())
	player, err := ctx.NewPlayer(loop)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	return &Music{player: player}, nil
}

// Play starts or resumes the track
func (m *Music) Play() {
	m.player.Play()
}

// Toggle pauses a playing track or resumes a paused one
func (m *Music) Toggle() bool {
	if m.player.IsPlaying() {
		m.player.Pause()
		return false
	}
	m.player.Play()
	return true
}

// Close releases the player
func (m *Music) Close() error {
	return m.player.Close()
}
