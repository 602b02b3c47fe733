// Package ebiten draws Note Hunt frames with Ebitengine and plays the
// ambient music track.
package ebiten
