package song

import "strconv"

// BPM is a song's tempo. A constant tempo has Lower == Upper == Main.
type BPM struct {
	Lower uint16
	Upper uint16
	// Main is the tempo the song spends most of its time at.
	Main uint16
}

// ConstantBPM returns a BPM without tempo changes.
func ConstantBPM(bpm uint16) BPM { return BPM{Lower: bpm, Upper: bpm, Main: bpm} }

// IsConstant reports whether the tempo never changes.
func (b BPM) IsConstant() bool { return b.Lower == b.Upper }

// String renders "150" or "75-528 (200)".
func (b BPM) String() string {
	if b.IsConstant() {
		return strconv.Itoa(int(b.Main))
	}
	return strconv.Itoa(int(b.Lower)) + "-" + strconv.Itoa(int(b.Upper)) + " (" + strconv.Itoa(int(b.Main)) + ")"
}
