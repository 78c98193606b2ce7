// Package planner is a multi-page planner editor built on a single drawing
// surface.
//
// A planner is an ordered list of fixed-size pages. Only one page is live at
// a time: its content sits on a [Surface] where it can be edited, and every
// edit is captured back into the page as a snapshot plus a thumbnail. Switching
// pages captures the outgoing page, clears the surface and restores the
// incoming page from its snapshot.
//
// Create an [Editor] over a surface from package canvas:
//
//	s, err := canvas.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e, err := planner.New(ctx, s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Close()
//
//	e.AddText("Monday")
//	e.AddSticker(ctx, "stickers/sticker1.png")
//	e.AddPage(ctx)
//	e.Select(ctx, 0)
//
// Export renders every page, in order, into one PDF with a full-bleed raster
// per page:
//
//	res, err := e.Export(ctx)
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//
//	path, err := e.ExportFile(ctx, dir) // dir/planner.pdf
//
// Export failures wrap [ErrExport]. A page whose snapshot cannot be restored
// is shown, and exported, as a blank page.
//
// Pages are rasterized by the surface's renderer: the pure Go
// [canvas.NativeRenderer] by default, or a headless Chrome renderer from
// package chrome.
package planner
