package engine

import "time"

// nowFunc is indirected so tests can substitute a fixed clock.
var nowFunc = time.Now
