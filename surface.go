package planner

import (
	"context"

	"github.com/porticus-lab/go-planner/canvas"
)

// Surface is the drawing surface the planner projects pages onto.
// [*canvas.Surface] implements it.
//
// Edits (Add, Remove, Modify) are reported to the single subscriber
// synchronously. Clear and Deserialize are not edits and report nothing.
// Deserialize and LoadImage are asynchronous; the planner waits on the
// returned task before touching the surface again.
type Surface interface {
	Size() (width, height int)

	Add(obj canvas.Object) error
	Remove(obj canvas.Object)
	Modify(obj canvas.Object, fn func()) (bool, error)
	Selected() canvas.Object
	Select(obj canvas.Object)
	ClearSelection()
	Clear()

	Serialize() (canvas.Snapshot, error)
	Deserialize(ctx context.Context, snap canvas.Snapshot) *canvas.Task[int]
	Rasterize(opts canvas.RasterOptions) ([]byte, error)
	LoadImage(ctx context.Context, src string) *canvas.Task[*canvas.Image]

	Subscribe(fn canvas.Listener) (cancel func(), err error)
}

var _ Surface = (*canvas.Surface)(nil)
