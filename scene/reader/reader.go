package reader

import (
	"time"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/texture"
	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/scene"
)

var logger = log.New("scene reader")

type Options struct {
	// Options for textures referenced by pattern statements.
	Texture texture.Options
}

// Read a scene from a local file or http(s) URL.
func Read(pathToScene string, opts Options) (*scene.Scene, error) {
	res, err := asset.NewResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return ReadResource(res, opts)
}

// Read a scene from a resource. Material libraries and textures are
// resolved relative to the resource.
func ReadResource(res *asset.Resource, opts Options) (*scene.Scene, error) {
	logger.Noticef("parsing scene from %s", res.Path())
	start := time.Now()

	r := newSceneReader(opts)
	if err := r.parse(res); err != nil {
		return nil, err
	}

	if len(r.scene.Objects) == 0 {
		logger.Warningf("scene %s does not define any objects", res.Path())
	}

	logger.Noticef("parsed scene with %d objects and %d textures in %d ms", len(r.scene.Objects), len(r.textures), time.Since(start).Nanoseconds()/1000000)
	return r.scene, nil
}
