package game

// SoundKind identifies a sound effect requested by the engine.
type SoundKind string

const (
	SoundMatch    SoundKind = "match"
	SoundMismatch SoundKind = "mismatch"
	SoundWin      SoundKind = "win"
)

// CardView is the visible state of one card.
type CardView struct {
	Symbol  string
	FaceUp  bool
	Matched bool
}

// Result summarizes a finished game.
type Result struct {
	Won        bool
	Attempts   int
	PairsFound int
	TotalPairs int
	TimeLeft   int
}

// Listener receives engine events. Calls happen synchronously from Select,
// Tick and scheduled tasks.
type Listener interface {
	RenderCard(index int, card CardView)
	RenderStatus(text string)
	RenderTimer(clock string, warning bool)
	PlaySound(kind SoundKind)
	GameOver(result Result)
}
