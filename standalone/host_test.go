package standalone

import (
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/go-audio/wav"
	emucore "github.com/user-none/nesplay/api"
	"github.com/user-none/nesplay/backend/native"
	"github.com/user-none/nesplay/controller"
	"github.com/user-none/nesplay/driver"
	"github.com/user-none/nesplay/video"
)

// frameEngine fills the whole frame with the controller byte of the last
// step.
type frameEngine struct {
	frame  []byte
	steps  int
	failAt int
	closed bool
}

func (e *frameEngine) Load(image []byte) error {
	if len(image) == 0 {
		return emucore.ErrInvalidImage
	}
	return nil
}

func (e *frameEngine) StepFrame(buttons uint8) error {
	e.steps++
	if e.failAt > 0 && e.steps >= e.failAt {
		return &emucore.HostTransferFault{Phase: emucore.PhaseStep, Op: "run", Err: errors.New("unreachable")}
	}
	for i := range e.frame {
		e.frame[i] = buttons
	}
	return nil
}

func (e *frameEngine) Framebuffer() ([]byte, error) { return e.frame, nil }

func (e *frameEngine) AudioSamples() []int16 {
	return []int16{int16(e.steps), -int16(e.steps)}
}

func (e *frameEngine) Close() error {
	e.closed = true
	return nil
}

type testFactory struct {
	name    string
	failAt  int
	engines []*frameEngine
}

func (f *testFactory) Name() string { return f.name }

func (f *testFactory) NewEngine() (emucore.Engine, error) {
	e := &frameEngine{frame: make([]byte, emucore.FramebufferSize), failAt: f.failAt}
	f.engines = append(f.engines, e)
	return e, nil
}

var testImage = []byte("NES\x1a\x01\x01\x00\x00")

func TestRunHeadless(t *testing.T) {
	f := &testFactory{name: "test"}
	res, err := RunHeadless(f, testImage, 120, nil)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if res.Frames < 120 || res.Frames > 121 {
		t.Errorf("Frames = %d, want 120", res.Frames)
	}
	if res.Presented != int(res.Frames) {
		t.Errorf("Presented = %d, want %d", res.Presented, res.Frames)
	}
	if len(res.Digest) != 64 {
		t.Errorf("Digest = %q", res.Digest)
	}
	if !f.engines[0].closed {
		t.Error("engine not closed after run")
	}

	again, err := RunHeadless(&testFactory{name: "test"}, testImage, 120, nil)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if again.Digest != res.Digest {
		t.Error("identical runs produced different digests")
	}
}

func TestRunHeadless_InputChangesDigest(t *testing.T) {
	plain, err := RunHeadless(&testFactory{name: "test"}, testImage, 30, nil)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}

	pressStart := func(frame uint64, s *controller.State) {
		s.Start = frame >= 10 && frame < 20
	}
	scripted, err := RunHeadless(&testFactory{name: "test"}, testImage, 30, pressStart)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if plain.Digest == scripted.Digest {
		t.Error("input had no effect on digest")
	}
}

func TestRunHeadless_Errors(t *testing.T) {
	if _, err := RunHeadless(&testFactory{name: "test"}, nil, 10, nil); !errors.Is(err, emucore.ErrInvalidImage) {
		t.Errorf("empty image = %v, want ErrInvalidImage", err)
	}

	_, err := RunHeadless(&testFactory{name: "test", failAt: 5}, testImage, 10, nil)
	if !errors.Is(err, emucore.ErrRuntimeFault) {
		t.Errorf("faulting engine = %v, want ErrRuntimeFault", err)
	}
}

func TestRunHeadless_RecordsAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	rec, err := NewWAVRecorder(path)
	if err != nil {
		t.Fatalf("NewWAVRecorder: %v", err)
	}
	res, err := RunHeadless(&testFactory{name: "test"}, testImage, 10, nil, driver.WithAudioSink(rec))
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if rec.Samples() != int(res.Frames)*2 {
		t.Errorf("Samples() = %d, want %d", rec.Samples(), res.Frames*2)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if dec.SampleRate != emucore.AudioSampleRate || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Errorf("format = %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != rec.Samples() {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), rec.Samples())
	}
	if buf.Data[0] != 1 || buf.Data[1] != -1 {
		t.Errorf("first frame = %v, want [1 -1]", buf.Data[:2])
	}
}

func newTestHost(t *testing.T, backends ...emucore.Factory) (*Host, *time.Time) {
	t.Helper()
	clock := time.Unix(1000, 0)
	h := &Host{
		compositor:   video.NewCompositor(nil),
		backends:     NewBackends(backends...),
		notification: NewNotification(),
		now:          func() time.Time { return clock },
	}
	h.notification.now = h.now
	h.driver = driver.New(backends[0], h.compositor,
		driver.WithScheduler(&h.tick),
		driver.WithFaultHandler(h.onFault))
	if err := h.driver.Load(testImage); err != nil {
		t.Fatalf("Load: %v", err)
	}
	h.start = h.now()
	return h, &clock
}

func TestHost_TicksOnlyWhenRequested(t *testing.T) {
	h, clock := newTestHost(t, &testFactory{name: "test"})

	h.step() // t=0, requested by Load
	*clock = clock.Add(17 * time.Millisecond)
	h.step()
	if h.driver.Frames() != 1 {
		t.Fatalf("Frames() = %d, want 1", h.driver.Frames())
	}

	h.driver.Stop()
	*clock = clock.Add(time.Second)
	h.step()
	h.step()
	if h.driver.Frames() != 1 {
		t.Errorf("stopped driver advanced to %d frames", h.driver.Frames())
	}
}

func TestHost_FaultShowsMessage(t *testing.T) {
	h, clock := newTestHost(t, &testFactory{name: "test", failAt: 1})

	h.step()
	*clock = clock.Add(20 * time.Millisecond)
	h.step()

	if h.driver.State() != driver.Stopped {
		t.Fatalf("State() = %s, want stopped", h.driver.State())
	}
	msg, ok := h.notification.Message()
	if !ok || msg != driver.MsgSandboxStep {
		t.Errorf("notification = %q, %v", msg, ok)
	}
}

func TestHost_SwitchBackend(t *testing.T) {
	a := &testFactory{name: "a"}
	b := &testFactory{name: "b"}
	h, _ := newTestHost(t, a, b)

	h.switchBackend()
	if h.driver.Backend() != "b" {
		t.Fatalf("Backend() = %s, want b", h.driver.Backend())
	}
	if msg, _ := h.notification.Message(); msg != "Backend: b" {
		t.Errorf("notification = %q", msg)
	}
	if !a.engines[0].closed || len(b.engines) != 1 {
		t.Error("switch did not replace the engine")
	}

	h.switchBackend()
	if h.driver.Backend() != "a" {
		t.Errorf("Backend() = %s, want a", h.driver.Backend())
	}
}

func TestHost_SwitchBackendSingle(t *testing.T) {
	h, _ := newTestHost(t, &testFactory{name: "only"})
	h.switchBackend()
	if msg, _ := h.notification.Message(); msg != "No other backend available" {
		t.Errorf("notification = %q", msg)
	}
}

func TestHost_Screenshot(t *testing.T) {
	h, _ := newTestHost(t, &testFactory{name: "test"})
	h.screenshotDir = t.TempDir()
	h.imageTag = "abc"
	h.scale = 1

	h.takeScreenshot()
	files, _ := filepath.Glob(filepath.Join(h.screenshotDir, "abc", "*.png"))
	if len(files) != 1 {
		t.Fatalf("screenshots = %v, want one", files)
	}
}

func TestSaveScreenshot(t *testing.T) {
	pixels := make([]byte, emucore.FramebufferSize)
	for i := range pixels {
		pixels[i] = 0xFF
	}

	path, err := SaveScreenshot(t.TempDir(), "", pixels, 2, 1)
	if err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 512 || b.Dy() != 480 {
		t.Errorf("size = %dx%d, want 512x480", b.Dx(), b.Dy())
	}

	if _, err := SaveScreenshot(t.TempDir(), "", pixels[:10], 1, 1); err == nil {
		t.Error("short framebuffer accepted")
	}
}

func TestScaleFrame(t *testing.T) {
	pixels := make([]byte, emucore.FramebufferSize)
	// Top-left pixel red.
	pixels[0], pixels[3] = 0xFF, 0xFF

	img := ScaleFrame(pixels, 3, emucore.PixelAspectRatio)
	if img.Bounds().Dx() != 878 || img.Bounds().Dy() != 720 {
		t.Fatalf("size = %v", img.Bounds())
	}
	if c := img.RGBAAt(2, 2); c.R != 0xFF || c.A != 0xFF {
		t.Errorf("scaled pixel = %v, want red", c)
	}
	if c := img.RGBAAt(10, 10); c.R != 0 {
		t.Errorf("pixel outside source = %v, want black", c)
	}
}

func TestFitScale(t *testing.T) {
	tests := []struct {
		w, h       int
		par        float64
		scale      float64
		offX, offY float64
	}{
		{256, 240, 1, 1, 0, 0},
		{512, 480, 1, 2, 0, 0},
		{1024, 480, 1, 2, 256, 0},
		{256, 480, 1, 1, 0, 120},
	}

	for _, tt := range tests {
		scale, offX, offY := fitScale(tt.w, tt.h, tt.par)
		if math.Abs(scale-tt.scale) > 1e-9 || math.Abs(offX-tt.offX) > 1e-9 || math.Abs(offY-tt.offY) > 1e-9 {
			t.Errorf("fitScale(%d, %d) = %v, %v, %v", tt.w, tt.h, scale, offX, offY)
		}
	}
}

func TestNotification(t *testing.T) {
	clock := time.Unix(0, 0)
	n := NewNotification()
	n.now = func() time.Time { return clock }

	if _, ok := n.Message(); ok {
		t.Fatal("empty notification visible")
	}
	n.Show("hello")
	if msg, ok := n.Message(); !ok || msg != "hello" {
		t.Fatalf("Message() = %q, %v", msg, ok)
	}
	clock = clock.Add(notificationDuration)
	if _, ok := n.Message(); ok {
		t.Error("notification visible after expiry")
	}
}

func TestBackends(t *testing.T) {
	a := &testFactory{name: "a"}
	b := &testFactory{name: "b"}
	bs := NewBackends(a, nil, b)

	if !slices.Equal(bs.Names(), []string{"a", "b"}) {
		t.Fatalf("Names() = %v", bs.Names())
	}
	if f, ok := bs.Get("b"); !ok || f != b {
		t.Error("Get(b) failed")
	}
	if _, ok := bs.Get("c"); ok {
		t.Error("Get(c) succeeded")
	}
	if bs.Next("a") != b || bs.Next("b") != a || bs.Next("zzz") != a {
		t.Error("Next does not cycle")
	}
	if NewBackends(a).Next("a") != nil {
		t.Error("Next with one backend should be nil")
	}
}

type optionalFactory struct {
	testFactory
	available bool
}

func (f *optionalFactory) Available() bool { return f.available }

func TestBackends_SkipsUnavailable(t *testing.T) {
	a := &testFactory{name: "a"}
	missing := &optionalFactory{testFactory: testFactory{name: "native"}}
	present := &optionalFactory{testFactory: testFactory{name: "wasm"}, available: true}

	bs := NewBackends(missing, a, present)
	if !slices.Equal(bs.Names(), []string{"a", "wasm"}) {
		t.Fatalf("Names() = %v", bs.Names())
	}
	if _, ok := bs.Get("native"); ok {
		t.Error("unavailable backend registered")
	}

	if NewBackends(missing, a).Next("a") != nil {
		t.Error("switch offered an unavailable backend")
	}
}

func TestBackends_NativeWithoutCore(t *testing.T) {
	bs := NewBackends(native.Factory{}, &testFactory{name: "wasm"})
	if !slices.Equal(bs.Names(), []string{"wasm"}) {
		t.Errorf("Names() = %v, want [wasm]", bs.Names())
	}
}
