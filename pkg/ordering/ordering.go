// Package ordering sorts rename candidates before they are staged.
package ordering

import (
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
)

// TimeSource returns the timestamp used for chronological ordering.
type TimeSource interface {
	Time(path string) (time.Time, error)
}

// Natural sorts paths in human order: embedded numbers compare by value, so
// "file 2" precedes "file 10". Equal keys keep their input order.
func Natural(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		// natsort.Compare reports true for equal strings.
		return paths[i] != paths[j] && natsort.Compare(paths[i], paths[j])
	})
}

// Chronological sorts paths oldest first using src. Each path is resolved
// once; ties keep their input order.
func Chronological(paths []string, src TimeSource) error {
	stamps := make(map[string]time.Time, len(paths))
	for _, path := range paths {
		tm, err := src.Time(path)
		if err != nil {
			return fmt.Errorf("resolve capture time: %w", err)
		}
		stamps[path] = tm
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return stamps[paths[i]].Before(stamps[paths[j]])
	})

	return nil
}
