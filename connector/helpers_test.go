package connector

import (
	"errors"
	"os"

	"github.com/paulmach/orb"

	"geographer/geom"
	"geographer/persist"
)

var errDownloadFailed = errors.New("download failed")

func bufferAt(x, y, radius float64) orb.Polygon {
	return geom.Buffer(orb.Point{x, y}, radius, 32)
}

func removeFile(path string) error {
	return os.Remove(path)
}

func vectorsPathForTest(dataDir string) string {
	return persist.VectorsPath(dataDir)
}
