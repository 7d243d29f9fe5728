package mapengine

import "github.com/sirupsen/logrus"

// log is the package-level structured logger, used for diagnostics such as
// transient retries and cache-budget exhaustion that don't rise to an
// error return.
var log = logrus.New()

// SetLogger replaces the package-level logger, letting an embedding
// application route mapengine's diagnostics into its own log pipeline.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}

func logTile(key TileKey) *logrus.Entry {
	return log.WithField("tile_key", key.String())
}
