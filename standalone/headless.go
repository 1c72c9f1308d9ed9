package standalone

import (
	"fmt"

	emucore "github.com/user-none/nesplay/api"
	"github.com/user-none/nesplay/controller"
	"github.com/user-none/nesplay/driver"
	"github.com/user-none/nesplay/video"
)

// InputScript sets the controller before each host tick of a headless run.
// frame is the number of logical frames stepped so far.
type InputScript func(frame uint64, state *controller.State)

// HeadlessResult summarises a headless run.
type HeadlessResult struct {
	Frames    uint64
	Presented int
	Digest    string
}

// RunHeadless plays image for at least frames logical frames against
// synthetic 60Hz timestamps, without a window or audio, and fingerprints
// every presented frame. opts are passed to the driver, typically an audio
// sink for capture.
func RunHeadless(factory emucore.Factory, image []byte, frames uint64, script InputScript, opts ...driver.Option) (HeadlessResult, error) {
	digest := video.NewDigest(nil)
	d := driver.New(factory, video.NewCompositor(digest), opts...)
	if err := d.Load(image); err != nil {
		return HeadlessResult{}, err
	}
	defer d.Teardown()

	const period = 1000.0 / emucore.NormalFPS
	for tick := 0; d.Frames() < frames; tick++ {
		if script != nil {
			script(d.Frames(), d.Controller())
		}
		d.Tick(float64(tick) * period)
		if d.State() != driver.Running {
			return HeadlessResult{}, fmt.Errorf("stopped after %d frames: %w", d.Frames(), d.Fault())
		}
	}

	return HeadlessResult{
		Frames:    d.Frames(),
		Presented: digest.Frames(),
		Digest:    digest.Hash(),
	}, nil
}
