package snapshots

import (
	"fmt"
	"path/filepath"
)

// RankingsSnapshotPath builds the path to a rankings snapshot for a given date.
func RankingsSnapshotPath(basePath, date string) string {
	return filepath.Join(basePath, string(kindRankings), fmt.Sprintf("%s.json", date))
}

// MatchArchivePath builds the path to an archived finished match.
func MatchArchivePath(basePath, matchID string) string {
	return filepath.Join(basePath, string(kindMatches), fmt.Sprintf("%s.json", matchID))
}
