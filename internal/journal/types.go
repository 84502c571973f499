package journal

import "time"

// Sources a command can arrive through.
const (
	SourceAPI     = "api"
	SourceCtlFile = "ctlfile"
)

// Intent is the record of a resolved command about to be handed to a recipe.
// It carries everything a post-mortem needs; results are never written
// because the interesting outcomes leave nobody around to write them.
type Intent struct {
	Label     string
	Kind      int
	Source    string
	Principal string
	RawLen    int
	Armed     bool
}

// Entry is a stored intent.
type Entry struct {
	ID        string
	Label     string
	Kind      int
	Source    string
	Principal *string
	RawLen    int
	Armed     bool
	CreatedAt time.Time
}
