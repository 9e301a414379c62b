package store

import (
	"fmt"
	"sort"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

// AlreadyExists builds the ALREADY_EXISTS error shared by every backend.
func AlreadyExists(entity, key string) error {
	return apperrors.WithMetadata(apperrors.CodeAlreadyExists, fmt.Sprintf("%s %s already exists", entity, key), map[string]string{
		"entity": entity,
		"key":    key,
	})
}

// VersionConflict builds the VERSION_CONFLICT error shared by every backend.
func VersionConflict(id string, expected, actual int64) error {
	return apperrors.WithMetadata(apperrors.CodeVersionConflict,
		fmt.Sprintf("match %s was modified concurrently (expected version %d, found %d)", id, expected, actual),
		map[string]string{"match_id": id})
}

// SortNewestFirst orders matches by creation time descending, then id.
func SortNewestFirst(list []matches.Match) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
