package build

import (
	"fmt"

	"metmaster/internal/release"
)

type imageSource int

const (
	sourceNone imageSource = iota
	sourceCache
	sourceCSV
)

// stats accumulates release.BuildStats during the row pass.
type stats struct {
	release.BuildStats
}

func (s *stats) scanned() { s.RowsScanned++ }

func (s *stats) badObjectID() { s.RowsSkippedBadObjectID++ }

func (s *stats) resolved(src imageSource) {
	switch src {
	case sourceCache:
		s.RowsWithImagesFromCache++
	case sourceCSV:
		s.RowsWithImagesFromCSVFallback++
	}
}

func (s *stats) noImages() { s.RowsSkippedNoImages++ }

func (s *stats) flags(publicDomain, highlight int) {
	if publicDomain == 1 {
		s.RowsPublicDomain++
	}
	if highlight == 1 {
		s.RowsHighlight++
	}
}

func (s *stats) accepted() { s.RowsWithImages++ }

// checkStats verifies that every scanned row was counted exactly once.
func checkStats(s release.BuildStats) error {
	if sum := s.RowsWithImages + s.RowsSkippedNoImages + s.RowsSkippedBadObjectID; sum != s.RowsScanned {
		return fmt.Errorf("row accounting mismatch: scanned %d, accounted %d", s.RowsScanned, sum)
	}
	return nil
}
