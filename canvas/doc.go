// Package canvas is an in-memory drawing surface for planner pages.
//
// A [Surface] holds an ordered scene of objects ([Textbox] and [Image]) on a
// fixed-size page with a solid background. It reports every edit to a single
// subscriber, captures its whole scene as a JSON [Snapshot], restores a scene
// from a snapshot asynchronously, and rasterizes the scene through a
// pluggable [Renderer].
//
// Mutations are synchronous:
//
//	s, err := canvas.New(canvas.WithLoader(canvas.DirLoader{Root: "stickers"}))
//	cancel, err := s.Subscribe(func(ev canvas.Event) { ... })
//	t := canvas.NewTextbox("Type here")
//	s.Add(t)
//	s.Modify(t, func() { t.Left += 20 })
//
// Restoring a snapshot and loading sticker images are asynchronous and return
// a [Task] that the caller waits on before touching the surface again:
//
//	n, err := s.Deserialize(ctx, snap).Wait()
//	img, err := s.LoadImage(ctx, "sticker1.png").Wait()
//
// Clearing and restoring do not emit events: they project stored state onto
// the surface rather than edit it.
package canvas
