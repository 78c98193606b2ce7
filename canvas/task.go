package canvas

// Task is the pending result of an asynchronous surface operation.
//
// A Task completes exactly once. Wait blocks until then; there is no way to
// abort the work behind it.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// Completed returns a Task that has already finished with v and err.
func Completed[T any](v T, err error) *Task[T] {
	t := newTask[T]()
	t.finish(v, err)
	return t
}

func (t *Task[T]) finish(v T, err error) {
	t.value = v
	t.err = err
	close(t.done)
}

// Done returns a channel that is closed when the task completes.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes and returns its result.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.value, t.err
}
