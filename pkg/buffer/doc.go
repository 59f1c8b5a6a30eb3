// Package buffer provides an unbounded, thread-safe FIFO queue for handing
// values from one producer goroutine to a consumer loop.
//
// Push never blocks: the queue grows to hold whatever the producer writes,
// so a slow consumer accumulates items instead of stalling the producer or
// losing data. Pop blocks until an item is available, the context is done,
// or the queue is closed.
//
// Example usage:
//
//	q := buffer.NewQueue[string](16)
//
//	// producer
//	q.Push("hello")
//
//	// consumer
//	for {
//	    v, err := q.Pop(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    handle(v)
//	}
package buffer
