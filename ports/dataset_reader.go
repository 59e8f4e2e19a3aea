package ports

import (
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

// DatasetReader loads tabular data from an external source (xlsx, csv)
// into an immutable dataset snapshot.
type DatasetReader interface {
	Read() (*tabular.Dataset, error)
}
