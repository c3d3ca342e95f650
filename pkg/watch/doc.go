// Package watch bridges a machine's synchronous listeners to channels, for
// consumers that select on events instead of registering callbacks.
//
// A subscription buffers events and never blocks the machine: when a
// consumer falls behind and the buffer fills up, new events are dropped for
// that subscription. Size the buffer with WithBuffer when bursts are
// expected.
//
// # Usage
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	sub := watch.Events(ctx, m, watch.WithBuffer(64))
//	defer sub.Close()
//
//	go func() {
//	    for e := range sub.C() {
//	        if e.Blocked != "" {
//	            fmt.Println("blocked:", e.From, "->", e.To, "by", e.Blocked)
//	        }
//	    }
//	}()
//
// Cancelling the context closes the subscription and its channel; Close does
// the same explicitly and is idempotent.
package watch
