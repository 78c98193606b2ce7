package canvas

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // sticker formats
	_ "image/jpeg" // sticker formats
	_ "image/png"  // sticker formats
	"log/slog"
	"net/http"
	"slices"
	"sync"

	_ "golang.org/x/image/bmp"  // sticker formats
	_ "golang.org/x/image/webp" // sticker formats
)

// Default page geometry, in points.
const (
	DefaultWidth  = 900
	DefaultHeight = 1200

	// BlankBackground is the background of a cleared surface.
	BlankBackground = "#ffffff"

	// imagePixelBudget bounds a decoded sticker, as a multiple of the page
	// area in points.
	imagePixelBudget = 8
)

// EventType identifies a scene edit.
type EventType int

const (
	// ObjectAdded reports an object placed on the scene.
	ObjectAdded EventType = iota + 1
	// ObjectModified reports a change made through [Surface.Modify].
	ObjectModified
	// ObjectRemoved reports an object taken off the scene.
	ObjectRemoved
)

func (t EventType) String() string {
	switch t {
	case ObjectAdded:
		return "object:added"
	case ObjectModified:
		return "object:modified"
	case ObjectRemoved:
		return "object:removed"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event reports one edit of the scene.
type Event struct {
	Type   EventType
	Object Object
}

// Listener receives scene edits. It runs synchronously on the goroutine that
// made the edit, after the surface lock is released, so it may read the
// surface.
type Listener func(Event)

// Option configures a [Surface].
type Option func(*Surface)

// WithSize sets the page size in points. Defaults to 900×1200.
func WithSize(width, height int) Option {
	return func(s *Surface) {
		s.width = width
		s.height = height
	}
}

// WithRenderer sets the renderer used by [Surface.Rasterize]. Defaults to a
// [NativeRenderer].
func WithRenderer(r Renderer) Option {
	return func(s *Surface) { s.renderer = r }
}

// WithLoader sets the sticker loader. Defaults to DefaultLoader(".").
func WithLoader(l Loader) Option {
	return func(s *Surface) { s.loader = l }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) { s.logger = l }
}

// Surface is a mutable single-page scene.
//
// All methods are safe to call from any goroutine, but a surface models one
// editing flow: callers must wait on a pending [Surface.Deserialize] before
// editing again.
type Surface struct {
	width    int
	height   int
	renderer Renderer
	loader   Loader
	logger   *slog.Logger

	mu         sync.Mutex
	background string
	objects    []Object
	selected   Object
	listener   Listener
	listenerID uint64

	imgMu  sync.Mutex
	images map[string]*Image
}

// New returns a blank surface.
func New(opts ...Option) (*Surface, error) {
	s := &Surface{
		width:      DefaultWidth,
		height:     DefaultHeight,
		background: BlankBackground,
		images:     make(map[string]*Image),
	}
	for _, o := range opts {
		o(s)
	}
	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("canvas: invalid page size %dx%d", s.width, s.height)
	}
	if s.renderer == nil {
		r, err := NewNativeRenderer()
		if err != nil {
			return nil, err
		}
		s.renderer = r
	}
	if s.loader == nil {
		s.loader = DefaultLoader(".")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Size returns the page size in points.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// Subscribe registers the single listener for scene edits. The returned
// function unsubscribes it.
func (s *Surface) Subscribe(fn Listener) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil, ErrAlreadySubscribed
	}
	s.listener = fn
	s.listenerID++
	id := s.listenerID
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.listenerID == id {
			s.listener = nil
		}
	}, nil
}

func (s *Surface) emit(fn Listener, ev Event) {
	if fn != nil {
		fn(ev)
	}
}

// Add appends obj on top of the scene. Adding an object that is already in
// the scene does nothing. Objects that could not be captured or rendered are
// rejected with [ErrInvalidObject].
func (s *Surface) Add(obj Object) error {
	if err := validateObject(obj); err != nil {
		return err
	}
	s.mu.Lock()
	if s.indexOf(obj) >= 0 {
		s.mu.Unlock()
		return nil
	}
	s.objects = append(s.objects, obj)
	fn := s.listener
	s.mu.Unlock()

	s.emit(fn, Event{Type: ObjectAdded, Object: obj})
	return nil
}

// Remove takes obj out of the scene, dropping the selection if it was
// selected. Removing an absent object does nothing.
func (s *Surface) Remove(obj Object) {
	s.mu.Lock()
	i := s.indexOf(obj)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	if s.selected == obj {
		s.selected = nil
	}
	fn := s.listener
	s.mu.Unlock()

	s.emit(fn, Event{Type: ObjectRemoved, Object: obj})
}

// Modify applies fn to obj under the surface lock and reports the edit.
// It returns false, without calling fn, if obj is not in the scene. If fn
// leaves obj invalid, the change is rolled back, no event fires and
// [ErrInvalidObject] is returned.
func (s *Surface) Modify(obj Object, fn func()) (bool, error) {
	s.mu.Lock()
	if s.indexOf(obj) < 0 {
		s.mu.Unlock()
		return false, nil
	}
	before := obj.clone()
	fn()
	if err := validateObject(obj); err != nil {
		obj.restore(before)
		s.mu.Unlock()
		return false, err
	}
	l := s.listener
	s.mu.Unlock()

	s.emit(l, Event{Type: ObjectModified, Object: obj})
	return true, nil
}

func validateObject(obj Object) error {
	switch v := obj.(type) {
	case *Textbox:
		if _, err := parseColor(v.Fill); err != nil {
			return fmt.Errorf("%w: textbox %s fill: %w", ErrInvalidObject, v.id, err)
		}
	case *Image:
		if v.Src == "" {
			return fmt.Errorf("%w: image %s has no src", ErrInvalidObject, v.id)
		}
	case nil:
		return fmt.Errorf("%w: nil object", ErrInvalidObject)
	}
	return nil
}

// Objects returns the scene objects in stacking order.
func (s *Surface) Objects() []Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.objects)
}

// Background returns the background color.
func (s *Surface) Background() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

// Selected returns the selected object, or nil.
func (s *Surface) Selected() Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select makes obj the selected object. Objects not in the scene are ignored.
func (s *Surface) Select(obj Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(obj) >= 0 {
		s.selected = obj
	}
}

// ClearSelection drops the selection.
func (s *Surface) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Clear removes every object and resets the background. No events fire.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Surface) reset() {
	s.objects = nil
	s.selected = nil
	s.background = BlankBackground
}

func (s *Surface) indexOf(obj Object) int {
	return slices.IndexFunc(s.objects, func(o Object) bool { return o == obj })
}

// Serialize captures the whole scene.
func (s *Surface) Serialize() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encodeScene(s.width, s.height, s.background, s.objects)
}

// Rasterize renders the current scene.
func (s *Surface) Rasterize(opts RasterOptions) ([]byte, error) {
	return s.renderer.Render(s.scene(), opts)
}

func (s *Surface) scene() Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	objs := make([]Object, len(s.objects))
	for i, o := range s.objects {
		objs[i] = o.clone()
	}
	return Scene{Width: s.width, Height: s.height, Background: s.background, Objects: objs}
}

// Deserialize replaces the scene with the one in snap. Sticker images are
// loaded in the background; the returned task completes with the number of
// restored objects once the scene matches snap.
//
// If snap is malformed, was captured at another page size, or references an
// image that cannot be loaded, the scene is left blank and the task fails.
// No events fire either way.
func (s *Surface) Deserialize(ctx context.Context, snap Snapshot) *Task[int] {
	task := newTask[int]()
	go func() {
		objs, bg, err := s.materialize(ctx, snap)

		s.mu.Lock()
		s.reset()
		if err == nil {
			s.objects = objs
			s.background = bg
		}
		s.mu.Unlock()

		task.finish(len(objs), err)
	}()
	return task
}

func (s *Surface) materialize(ctx context.Context, snap Snapshot) ([]Object, string, error) {
	doc, err := decodeSnapshot(snap)
	if err != nil {
		return nil, "", err
	}
	if doc.Width != s.width || doc.Height != s.height {
		return nil, "", fmt.Errorf("%w: page size %dx%d, surface is %dx%d",
			ErrMalformedSnapshot, doc.Width, doc.Height, s.width, s.height)
	}

	objs := make([]Object, 0, len(doc.Objects))
	for _, el := range doc.Objects {
		switch el.Type {
		case KindTextbox:
			objs = append(objs, &Textbox{
				id:       el.ID,
				Text:     el.Text,
				Left:     el.Left,
				Top:      el.Top,
				Width:    el.Width,
				FontSize: el.FontSize,
				Fill:     el.Fill,
			})
		case KindImage:
			img, err := s.loadImage(ctx, el.Src)
			if err != nil {
				return nil, "", err
			}
			img.id = el.ID
			img.Left, img.Top = el.Left, el.Top
			img.ScaleX, img.ScaleY = el.ScaleX, el.ScaleY
			objs = append(objs, img)
		}
	}
	return objs, doc.Background, nil
}

// LoadImage fetches and decodes the sticker at src in the background. The
// image is not added to the scene. Decoded images are cached by src for the
// lifetime of the surface.
func (s *Surface) LoadImage(ctx context.Context, src string) *Task[*Image] {
	task := newTask[*Image]()
	go func() {
		task.finish(s.loadImage(ctx, src))
	}()
	return task
}

// loadImage returns a fresh Image object sharing a cached bitmap.
func (s *Surface) loadImage(ctx context.Context, src string) (*Image, error) {
	s.imgMu.Lock()
	cached, ok := s.images[src]
	s.imgMu.Unlock()

	if !ok {
		data, err := s.loader.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("canvas: decoding %s: %w", src, err)
		}
		if limit := imagePixelBudget * s.width * s.height; cfg.Width*cfg.Height > limit {
			return nil, fmt.Errorf("%w: %s is %dx%d, limit is %d pixels",
				ErrImageTooLarge, src, cfg.Width, cfg.Height, limit)
		}
		bitmap, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("canvas: decoding %s: %w", src, err)
		}
		cached = &Image{Src: src, bitmap: bitmap, data: data, mime: mimeType(format, data)}

		s.imgMu.Lock()
		s.images[src] = cached
		s.imgMu.Unlock()
		s.logger.Debug("sticker loaded", "src", src, "format", format, "bytes", len(data))
	}

	img := *cached
	img.id = newObjectID()
	img.ScaleX, img.ScaleY = 1, 1
	return &img, nil
}

func mimeType(format string, data []byte) string {
	if format != "" {
		return "image/" + format
	}
	return http.DetectContentType(data)
}
