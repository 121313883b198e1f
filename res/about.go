package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `A real-time audio visualizer built with Go and Fyne.

**Shapes:**
- Circular: mirrored radial bars around a pulsing core
- Edge Bars: bars growing from the window edges and rings
- Ripple Waveform: expanding ripples with a speaker emblem

Plays WAV, MP3, OGG Vorbis and FLAC files, or a built-in test tone.
`

// KeysContent lists the keyboard controls.
const KeysContent = `| Key | Action |
|---|---|
| Space | Next shape |
| C | Next color preset |
| S | Toggle smoothing |
| I | Toggle stats overlay |
| Up / Down | Shorter / longer trails |
| O | Open audio file |
| Esc | Stop the source |
| R | Reset settings |
`
